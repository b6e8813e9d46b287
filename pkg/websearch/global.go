package websearch

import (
	"context"

	"github.com/yuw136/paper-helper/pkg/retrieval"
	"github.com/yuw136/paper-helper/pkg/store"
)

// GlobalCorpus exposes corpus-wide chunk retrieval as a search tool, so the
// planner can consult papers other than the one the thread is anchored to.
type GlobalCorpus struct {
	retriever *retrieval.Retriever
}

func NewGlobalCorpus(retriever *retrieval.Retriever) *GlobalCorpus {
	return &GlobalCorpus{retriever: retriever}
}

func (g *GlobalCorpus) Name() string {
	return store.SourceGlobalDB
}

func (g *GlobalCorpus) Search(ctx context.Context, query string, limit int) ([]store.Document, error) {
	// The retriever already degrades to empty on failure.
	return g.retriever.OpeningChunksByQuery(ctx, query, limit), nil
}
