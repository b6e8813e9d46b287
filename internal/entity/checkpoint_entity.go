package entity

import (
	"time"
)

// CheckpointState is the turn-to-turn snapshot of a thread's conversation
// state. Messages live in their own table; the snapshot carries only the
// fields that survive between turns.
type CheckpointState struct {
	PaperId    string `json:"paper_id"`
	PaperTopic string `json:"paper_topic"`
	Summary    string `json:"summary"`
	TurnCount  int    `json:"turn_count"`
}

// Checkpoint keys the latest CheckpointState by thread id.
type Checkpoint struct {
	ThreadId  string
	State     CheckpointState
	UpdatedAt time.Time
}
