package contract

import (
	"context"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPaperChunk wraps PaperChunk with its similarity score
type ScoredPaperChunk struct {
	Chunk      *entity.PaperChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type PaperChunkRepository interface {
	Create(ctx context.Context, chunk *entity.PaperChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.PaperChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPaperId(ctx context.Context, paperId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaperChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaperChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Advanced
	// SearchSimilar scopes the search to a single paper when paperId is
	// non-empty; with an empty paperId it searches the whole corpus.
	SearchSimilar(ctx context.Context, embedding []float32, paperId string, limit int) ([]*entity.PaperChunk, error)
	// SearchSimilarWithScore returns chunks with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, paperId string, limit int, threshold float64) ([]*ScoredPaperChunk, error)
	// OpeningChunksByPaperId fetches the leading fragments of a paper in
	// document order (the abstract and introduction).
	OpeningChunksByPaperId(ctx context.Context, paperId string, indexes []int) ([]*entity.PaperChunk, error)
	// OpeningChunksNearest finds the papers whose opening fragments are
	// closest to the query vector, one fragment set per paper.
	OpeningChunksNearest(ctx context.Context, embedding []float32, limit int) ([]*entity.PaperChunk, error)
}
