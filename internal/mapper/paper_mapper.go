package mapper

import (
	"encoding/json"
	"time"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaperMapper struct{}

func NewPaperMapper() *PaperMapper {
	return &PaperMapper{}
}

func (m *PaperMapper) ToEntity(p *model.Paper) *entity.Paper {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Paper{
		Id:          p.Id,
		Topic:       p.Topic,
		Title:       p.Title,
		Authors:     p.Authors,
		Summary:     p.Summary,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}

func (m *PaperMapper) ToModel(p *entity.Paper) *model.Paper {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}

	mp := &model.Paper{
		Id:          p.Id,
		Topic:       p.Topic,
		Title:       p.Title,
		Authors:     p.Authors,
		Summary:     p.Summary,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		DeletedAt:   deletedAt,
	}
	if p.UpdatedAt != nil {
		mp.UpdatedAt = *p.UpdatedAt
	}
	return mp
}

type PaperChunkMapper struct{}

func NewPaperChunkMapper() *PaperChunkMapper {
	return &PaperChunkMapper{}
}

func (m *PaperChunkMapper) ToEntity(c *model.PaperChunk) *entity.PaperChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Best effort; malformed metadata is not worth failing a read for.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.PaperChunk{
		Id:         c.Id,
		PaperId:    c.PaperId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		Embedding:  c.Embedding.Slice(),
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  c.DeletedAt.Valid,
	}
}

func (m *PaperChunkMapper) ToModel(c *entity.PaperChunk) *model.PaperChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = raw
		}
	}

	mc := &model.PaperChunk{
		Id:         c.Id,
		PaperId:    c.PaperId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		Embedding:  pgvector.NewVector(c.Embedding),
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
		DeletedAt:  deletedAt,
	}
	if c.UpdatedAt != nil {
		mc.UpdatedAt = *c.UpdatedAt
	}
	return mc
}
