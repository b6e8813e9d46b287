package entity

import (
	"time"
)

// ChatSession is one conversation thread. Ids are supplied by the client
// (the frontend creates the session id before the first message), so they
// are opaque strings rather than generated UUIDs.
type ChatSession struct {
	Id        string
	FileId    string // paper or report the session is anchored to
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
