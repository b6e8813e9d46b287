package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/repository/contract"
	"github.com/yuw136/paper-helper/internal/repository/unitofwork"
	"github.com/yuw136/paper-helper/pkg/embedding"
	"github.com/yuw136/paper-helper/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeEmbedder maps seed text to a recognizable one-hot vector so the fake
// repository can tell seeds apart.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   []string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.Result, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		v = []float32{0}
	}
	return &embedding.Result{Values: v}, nil
}

// fakeChunkRepo serves canned chunks keyed by the first vector component.
type fakeChunkRepo struct {
	contract.PaperChunkRepository // panic on anything not overridden

	bySeed  map[float32][]*entity.PaperChunk
	opening []*entity.PaperChunk
	nearest []*entity.PaperChunk
	err     error

	gotPaperId string
	gotLimits  []int
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, emb []float32, paperId string, limit int) ([]*entity.PaperChunk, error) {
	f.gotPaperId = paperId
	f.gotLimits = append(f.gotLimits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.bySeed[emb[0]], nil
}

func (f *fakeChunkRepo) OpeningChunksByPaperId(ctx context.Context, paperId string, indexes []int) ([]*entity.PaperChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.opening, nil
}

func (f *fakeChunkRepo) OpeningChunksNearest(ctx context.Context, emb []float32, limit int) ([]*entity.PaperChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.nearest, nil
}

type fakeUow struct {
	chunks *fakeChunkRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) PaperRepository() contract.PaperRepository             { return nil }
func (f *fakeUow) PaperChunkRepository() contract.PaperChunkRepository   { return f.chunks }
func (f *fakeUow) ChatSessionRepository() contract.ChatSessionRepository { return nil }
func (f *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return nil }
func (f *fakeUow) CheckpointRepository() contract.CheckpointRepository   { return nil }

type fakeFactory struct {
	uow unitofwork.UnitOfWork
}

func (f fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func chunk(text, title string) *entity.PaperChunk {
	meta := map[string]interface{}{}
	if title != "" {
		meta["title"] = title
	}
	return &entity.PaperChunk{
		Id:       uuid.New(),
		PaperId:  "paper-1",
		Text:     text,
		Metadata: meta,
	}
}

func newTestRetriever(repo *fakeChunkRepo, embedder *fakeEmbedder) *Retriever {
	return NewRetriever(embedder, fakeFactory{uow: &fakeUow{chunks: repo}}, nopLogger{}, Options{
		QuestionTopK:    3,
		ExcerptTopK:     2,
		MaxExcerptSeeds: 2,
	})
}

func TestRetrieverSearch(t *testing.T) {
	t.Run("multi seed with dedup", func(t *testing.T) {
		shared := chunk("the spectral gap is bounded", "Paper A")
		repo := &fakeChunkRepo{bySeed: map[float32][]*entity.PaperChunk{
			1: {shared, chunk("question specific", "Paper A")},
			2: {shared, chunk("excerpt specific", "Paper A")},
		}}
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"what bounds the gap": {1},
			"highlighted passage": {2},
		}}

		r := newTestRetriever(repo, embedder)
		docs := r.Search(context.Background(), "paper-1", "what bounds the gap", "", []string{"highlighted passage"})

		texts := make([]string, 0, len(docs))
		for _, d := range docs {
			texts = append(texts, d.Content)
		}
		assert.Equal(t, []string{"the spectral gap is bounded", "question specific", "excerpt specific"}, texts)
		assert.Equal(t, "paper-1", repo.gotPaperId)
		assert.Equal(t, []int{3, 2}, repo.gotLimits)
		assert.Equal(t, store.SourceSemantic, docs[0].Source)
		assert.Equal(t, "Paper A", docs[0].Title)
	})

	t.Run("rewritten question becomes an extra seed", func(t *testing.T) {
		repo := &fakeChunkRepo{bySeed: map[float32][]*entity.PaperChunk{}}
		embedder := &fakeEmbedder{vectors: map[string][]float32{}}

		r := newTestRetriever(repo, embedder)
		r.Search(context.Background(), "paper-1", "original", "rewritten", nil)

		assert.Equal(t, []string{"original", "rewritten"}, embedder.calls)
	})

	t.Run("rewritten equal to question is not embedded twice", func(t *testing.T) {
		repo := &fakeChunkRepo{bySeed: map[float32][]*entity.PaperChunk{}}
		embedder := &fakeEmbedder{vectors: map[string][]float32{}}

		r := newTestRetriever(repo, embedder)
		r.Search(context.Background(), "paper-1", "same", "same", nil)

		assert.Equal(t, []string{"same"}, embedder.calls)
	})

	t.Run("excerpt seeds are capped", func(t *testing.T) {
		repo := &fakeChunkRepo{bySeed: map[float32][]*entity.PaperChunk{}}
		embedder := &fakeEmbedder{vectors: map[string][]float32{}}

		r := newTestRetriever(repo, embedder)
		r.Search(context.Background(), "paper-1", "q", "", []string{"e1", "e2", "e3", "e4"})

		assert.Equal(t, []string{"q", "e1", "e2"}, embedder.calls)
	})

	t.Run("embedding failure degrades to empty", func(t *testing.T) {
		repo := &fakeChunkRepo{}
		embedder := &fakeEmbedder{err: errors.New("ollama down")}

		r := newTestRetriever(repo, embedder)
		docs := r.Search(context.Background(), "paper-1", "q", "", nil)
		assert.Empty(t, docs)
	})

	t.Run("repository failure degrades to empty", func(t *testing.T) {
		repo := &fakeChunkRepo{err: errors.New("db down")}
		embedder := &fakeEmbedder{vectors: map[string][]float32{}}

		r := newTestRetriever(repo, embedder)
		docs := r.Search(context.Background(), "paper-1", "q", "", nil)
		assert.Empty(t, docs)
	})
}

func TestRetrieverOpeningChunks(t *testing.T) {
	t.Run("by paper keeps document order", func(t *testing.T) {
		repo := &fakeChunkRepo{opening: []*entity.PaperChunk{
			chunk("abstract", "Paper A"),
			chunk("introduction", "Paper A"),
		}}
		r := newTestRetriever(repo, &fakeEmbedder{vectors: map[string][]float32{}})

		docs := r.OpeningChunksByPaper(context.Background(), "paper-1")
		if assert.Len(t, docs, 2) {
			assert.Equal(t, "abstract", docs[0].Content)
			assert.Equal(t, store.SourceSemantic, docs[0].Source)
		}
	})

	t.Run("by query tags results as global corpus", func(t *testing.T) {
		repo := &fakeChunkRepo{nearest: []*entity.PaperChunk{chunk("opening", "Paper B")}}
		r := newTestRetriever(repo, &fakeEmbedder{vectors: map[string][]float32{}})

		docs := r.OpeningChunksByQuery(context.Background(), "query", 2)
		if assert.Len(t, docs, 1) {
			assert.Equal(t, store.SourceGlobalDB, docs[0].Source)
		}
	})
}
