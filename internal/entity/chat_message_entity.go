package entity

import (
	"time"
)

// ChatMessage is one persisted message in a thread's append-only log.
// Timestamp is client milliseconds (matches the frontend); CreatedAt is
// server time and drives ordering.
type ChatMessage struct {
	Id        string
	ThreadId  string
	Role      string // constant.ChatMessageRoleUser | constant.ChatMessageRoleAi
	Content   string
	Timestamp int64
	Excerpts  []string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
