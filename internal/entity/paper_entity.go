package entity

import (
	"time"
)

// Paper is one ingested arXiv paper. Ids are arXiv identifiers
// (e.g. "2310.01340v2"), assigned by the ingestion pipeline.
type Paper struct {
	Id          string
	Topic       string
	Title       string
	Authors     string
	Summary     string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
