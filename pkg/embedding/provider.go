package embedding

import "context"

// Task types passed to providers that distinguish query vs document
// embeddings (Jina, Gemini style APIs). Providers that don't care ignore it.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Result carries the embedding vector for a piece of text.
type Result struct {
	Values []float32
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*Result, error)
}
