package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields of concrete events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Lifecycle events published to the bus.
const (
	TypeSessionCreated = "SESSION_CREATED"
	TypeTurnCompleted  = "TURN_COMPLETED"
	TypeTurnFailed     = "TURN_FAILED"
)

func NewSessionCreated(sessionId, fileId string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"file_id":    fileId,
		},
		OccurredAt: time.Now(),
	}
}

func NewTurnCompleted(threadId string, searchCount int, source string) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"thread_id":    threadId,
			"search_count": searchCount,
			"source":       source,
		},
		OccurredAt: time.Now(),
	}
}

func NewTurnFailed(threadId, reason string) Event {
	return BaseEvent{
		Type: TypeTurnFailed,
		Data: map[string]interface{}{
			"thread_id": threadId,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}
