package retrieval

import (
	"context"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/internal/repository/unitofwork"
	"github.com/yuw136/paper-helper/pkg/embedding"
	"github.com/yuw136/paper-helper/pkg/store"
)

// Options tune how many chunks each retrieval seed pulls.
type Options struct {
	QuestionTopK    int // for the question itself
	ExcerptTopK     int // per user-selected excerpt
	MaxExcerptSeeds int // excerpts actually embedded, extra ones are ignored
}

// Retriever embeds retrieval seeds and pulls nearest chunks from pgvector.
// It never fails a turn: embedding or query errors are logged and the
// affected seed contributes nothing, which downstream reads as "no local
// evidence" and escalates.
type Retriever struct {
	embedder          embedding.EmbeddingProvider
	repositoryFactory unitofwork.RepositoryFactory
	logger            logger.ILogger
	opts              Options
}

func NewRetriever(
	embedder embedding.EmbeddingProvider,
	repositoryFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	opts Options,
) *Retriever {
	if opts.QuestionTopK <= 0 {
		opts.QuestionTopK = 3
	}
	if opts.ExcerptTopK <= 0 {
		opts.ExcerptTopK = 2
	}
	if opts.MaxExcerptSeeds <= 0 {
		opts.MaxExcerptSeeds = 3
	}
	return &Retriever{
		embedder:          embedder,
		repositoryFactory: repositoryFactory,
		logger:            log,
		opts:              opts,
	}
}

// Search runs multi-seed retrieval scoped to one paper. Seeds are the
// question, the user excerpts, and the rewritten question when it differs
// from the original. Results are deduplicated by exact snippet text, seed
// order preserved.
func (r *Retriever) Search(ctx context.Context, paperId, question, rewritten string, excerpts []string) []store.Document {
	uow := r.repositoryFactory.NewUnitOfWork(ctx)
	chunkRepo := uow.PaperChunkRepository()

	seeds := []seed{{text: question, topK: r.opts.QuestionTopK}}
	for i, excerpt := range excerpts {
		if i >= r.opts.MaxExcerptSeeds {
			r.logger.Warn("Retrieval", "Excerpt seeds truncated", map[string]interface{}{
				"provided": len(excerpts),
				"used":     r.opts.MaxExcerptSeeds,
			})
			break
		}
		if excerpt == "" {
			continue
		}
		seeds = append(seeds, seed{text: excerpt, topK: r.opts.ExcerptTopK})
	}
	if rewritten != "" && rewritten != question {
		seeds = append(seeds, seed{text: rewritten, topK: r.opts.ExcerptTopK})
	}

	seen := make(map[string]bool)
	var docs []store.Document
	for _, s := range seeds {
		result, err := r.embedder.Generate(ctx, s.text, embedding.TaskRetrievalQuery)
		if err != nil {
			r.logger.Error("Retrieval", "Seed embedding failed", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		chunks, err := chunkRepo.SearchSimilar(ctx, result.Values, paperId, s.topK)
		if err != nil {
			r.logger.Error("Retrieval", "Similarity search failed", map[string]interface{}{
				"paper_id": paperId,
				"error":    err.Error(),
			})
			continue
		}

		for _, chunk := range chunks {
			if seen[chunk.Text] {
				continue
			}
			seen[chunk.Text] = true
			docs = append(docs, chunkToDocument(chunk))
		}
	}
	return docs
}

// OpeningChunksByPaper returns the paper's leading fragments (abstract and
// introduction) in document order. Used to ground question rewrites in what
// the paper is actually about.
func (r *Retriever) OpeningChunksByPaper(ctx context.Context, paperId string) []store.Document {
	uow := r.repositoryFactory.NewUnitOfWork(ctx)
	chunks, err := uow.PaperChunkRepository().OpeningChunksByPaperId(ctx, paperId, []int{0, 1})
	if err != nil {
		r.logger.Error("Retrieval", "Opening chunk fetch failed", map[string]interface{}{
			"paper_id": paperId,
			"error":    err.Error(),
		})
		return nil
	}

	docs := make([]store.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chunkToDocument(chunk))
	}
	return docs
}

// OpeningChunksByQuery searches opening fragments across the whole corpus.
// This backs corpus-wide lookups when a question is not anchored to one
// paper.
func (r *Retriever) OpeningChunksByQuery(ctx context.Context, query string, limit int) []store.Document {
	result, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.logger.Error("Retrieval", "Query embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	uow := r.repositoryFactory.NewUnitOfWork(ctx)
	chunks, err := uow.PaperChunkRepository().OpeningChunksNearest(ctx, result.Values, limit)
	if err != nil {
		r.logger.Error("Retrieval", "Corpus-wide search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	docs := make([]store.Document, 0, len(chunks))
	for _, chunk := range chunks {
		doc := chunkToDocument(chunk)
		doc.Source = store.SourceGlobalDB
		docs = append(docs, doc)
	}
	return docs
}

type seed struct {
	text string
	topK int
}

func chunkToDocument(chunk *entity.PaperChunk) store.Document {
	title := ""
	if chunk.Metadata != nil {
		if t, ok := chunk.Metadata["title"].(string); ok {
			title = t
		}
	}
	return store.Document{
		Source:  store.SourceSemantic,
		Title:   title,
		Content: chunk.Text,
	}
}
