package dto

// Session payloads use the frontend's camelCase field names; timestamps
// are client milliseconds.

type ChatSessionDTO struct {
	Id        string `json:"id" validate:"required"`
	FileId    string `json:"fileId" validate:"required"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type CreateChatSessionRequest struct {
	Session ChatSessionDTO `json:"session" validate:"required"`
}

type CreateChatSessionResponse struct {
	Message string `json:"message"`
}

// ExcerptDTO is a user-highlighted passage attached to a question. Only
// Content feeds retrieval; the rest is frontend display state echoed back.
type ExcerptDTO struct {
	Id           string             `json:"id"`
	Content      string             `json:"content" validate:"required"`
	PageNumber   *int               `json:"pageNumber,omitempty"`
	BoundingRect map[string]float64 `json:"boundingRect,omitempty"`
	Timestamp    *int64             `json:"timestamp,omitempty"`
}

type ChatRequest struct {
	ThreadId  string       `json:"thread_id" validate:"required"`
	MessageId string       `json:"message_id" validate:"required"`
	FileId    string       `json:"file_id" validate:"required"`
	Content   string       `json:"content" validate:"required"`
	Excerpts  []ExcerptDTO `json:"excerpts"`
	Timestamp int64        `json:"timestamp"`
}

type ChatMessageResponse struct {
	Id        string       `json:"id"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Timestamp int64        `json:"timestamp"`
	Excerpts  []ExcerptDTO `json:"excerpts,omitempty"`
}

// StreamEventDTO is one SSE frame of the /api/chat stream.
type StreamEventDTO struct {
	Type  string `json:"type"`
	Node  string `json:"node,omitempty"`
	Chunk string `json:"chunk,omitempty"`
	Error string `json:"error,omitempty"`
}
