package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaperChunk is one embedded text fragment of a paper. ChunkIndex is the
// 0-based position of the fragment in the source document; the opening
// fragments (index 0 and 1) cover the abstract and introduction.
type PaperChunk struct {
	Id         uuid.UUID
	PaperId    string
	ChunkIndex int
	Text       string
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
