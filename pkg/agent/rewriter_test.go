package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuw136/paper-helper/pkg/store"
	"github.com/stretchr/testify/assert"
)

type fakeFragments struct {
	byPaper []store.Document
	byQuery []store.Document
}

func (f fakeFragments) OpeningChunksByPaper(ctx context.Context, paperId string) []store.Document {
	return f.byPaper
}

func (f fakeFragments) OpeningChunksByQuery(ctx context.Context, query string, limit int) []store.Document {
	return f.byQuery
}

func TestQueryRewriterRewrite(t *testing.T) {
	opening := []store.Document{{Source: store.SourceSemantic, Content: "We study the spectral gap of expander graphs."}}

	t.Run("rewrites with paper grounding", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"What is the spectral gap of the expander family?"}}
		r := NewQueryRewriter(llm, fakeFragments{byPaper: opening}, nopLogger{}, time.Second, 2)

		rewritten, escalate := r.Rewrite(context.Background(), "how big is the gap", "paper-1")
		assert.False(t, escalate)
		assert.Equal(t, "What is the spectral gap of the expander family?", rewritten)
	})

	t.Run("uses corpus fragments when no paper pinned", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"rewritten"}}
		r := NewQueryRewriter(llm, fakeFragments{byQuery: opening}, nopLogger{}, time.Second, 2)

		rewritten, escalate := r.Rewrite(context.Background(), "how big is the gap", "")
		assert.False(t, escalate)
		assert.Equal(t, "rewritten", rewritten)
	})

	t.Run("no fragments escalates", func(t *testing.T) {
		llm := &fakeLLM{}
		r := NewQueryRewriter(llm, fakeFragments{}, nopLogger{}, time.Second, 2)

		_, escalate := r.Rewrite(context.Background(), "q", "paper-1")
		assert.True(t, escalate)
		assert.Equal(t, 0, llm.calls)
	})

	t.Run("judge error keeps original question", func(t *testing.T) {
		llm := &fakeLLM{err: errors.New("model down")}
		r := NewQueryRewriter(llm, fakeFragments{byPaper: opening}, nopLogger{}, time.Second, 2)

		rewritten, escalate := r.Rewrite(context.Background(), "original", "paper-1")
		assert.False(t, escalate)
		assert.Equal(t, "original", rewritten)
	})

	t.Run("blank response keeps original question", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"   \n"}}
		r := NewQueryRewriter(llm, fakeFragments{byPaper: opening}, nopLogger{}, time.Second, 2)

		rewritten, escalate := r.Rewrite(context.Background(), "original", "paper-1")
		assert.False(t, escalate)
		assert.Equal(t, "original", rewritten)
	})
}
