package implementation

import (
	"context"
	"errors"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/mapper"
	"github.com/yuw136/paper-helper/internal/model"
	"github.com/yuw136/paper-helper/internal/repository/contract"
	"github.com/yuw136/paper-helper/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PaperChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaperChunkMapper
}

func NewPaperChunkRepository(db *gorm.DB) contract.PaperChunkRepository {
	return &PaperChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaperChunkMapper(),
	}
}

func (r *PaperChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaperChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.PaperChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaperChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.PaperChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.PaperChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PaperChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PaperChunk{}, id).Error
}

func (r *PaperChunkRepositoryImpl) DeleteByPaperId(ctx context.Context, paperId string) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperId).Delete(&model.PaperChunk{}).Error
}

func (r *PaperChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaperChunk, error) {
	var m model.PaperChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaperChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaperChunk, error) {
	var models []*model.PaperChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaperChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaperChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PaperChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PaperChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, paperId string, limit int) ([]*entity.PaperChunk, error) {
	if limit <= 0 {
		limit = 3
	}
	var models []*model.PaperChunk

	// pgvector cosine distance: embedding <=> vector
	query := r.db.WithContext(ctx).
		Where("deleted_at IS NULL")
	if paperId != "" {
		query = query.Where("paper_id = ?", paperId)
	}

	err := query.
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	entities := make([]*entity.PaperChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold
func (r *PaperChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, paperId string, limit int, threshold float64) ([]*contract.ScoredPaperChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity.
	type result struct {
		model.PaperChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("paper_chunks").
		Select("paper_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)
	if paperId != "" {
		query = query.Where("paper_id = ?", paperId)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scoredChunks := make([]*contract.ScoredPaperChunk, len(results))
	for i, res := range results {
		scoredChunks[i] = &contract.ScoredPaperChunk{
			Chunk:      r.mapper.ToEntity(&res.PaperChunk),
			Similarity: res.Similarity,
		}
	}
	return scoredChunks, nil
}

func (r *PaperChunkRepositoryImpl) OpeningChunksByPaperId(ctx context.Context, paperId string, indexes []int) ([]*entity.PaperChunk, error) {
	if len(indexes) == 0 {
		indexes = []int{0, 1}
	}
	var models []*model.PaperChunk
	err := r.db.WithContext(ctx).
		Where("paper_id = ?", paperId).
		Where("chunk_index IN ?", indexes).
		Order("chunk_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.PaperChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaperChunkRepositoryImpl) OpeningChunksNearest(ctx context.Context, embedding []float32, limit int) ([]*entity.PaperChunk, error) {
	if limit <= 0 {
		limit = 3
	}
	var models []*model.PaperChunk

	// Rank papers by their nearest opening fragment, then return the
	// opening fragments of the winners in document order.
	queryVector := pgvector.NewVector(embedding)
	subQuery := r.db.Table("paper_chunks").
		Select("paper_id").
		Where("chunk_index IN ?", []int{0, 1}).
		Where("deleted_at IS NULL").
		Group("paper_id").
		Order(gorm.Expr("MIN(embedding <=> ?)", queryVector)).
		Limit(limit)

	err := r.db.WithContext(ctx).
		Where("paper_id IN (?)", subQuery).
		Where("chunk_index IN ?", []int{0, 1}).
		Order("paper_id, chunk_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.PaperChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
