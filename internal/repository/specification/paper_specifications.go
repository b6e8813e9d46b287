package specification

import (
	"gorm.io/gorm"
)

type ByPaperID struct {
	PaperID string
}

func (s ByPaperID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("paper_id = ?", s.PaperID)
}

type ByTopic struct {
	Topic string
}

func (s ByTopic) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("topic = ?", s.Topic)
}

// ByChunkIndexes filters chunks by their position in the paper. Used to
// pull the opening fragments (abstract and introduction) of a document.
type ByChunkIndexes struct {
	Indexes []int
}

func (s ByChunkIndexes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_index IN ?", s.Indexes)
}
