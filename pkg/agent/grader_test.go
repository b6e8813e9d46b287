package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuw136/paper-helper/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestRelevanceGraderGrade(t *testing.T) {
	docs := []store.Document{
		localDoc("eigenvalue bounds for the Laplacian"),
		localDoc("acknowledgements and funding"),
		localDoc("proof of the main theorem"),
	}

	t.Run("order preserving filter", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{
			`{"binary_score": "yes"}`,
			`{"binary_score": "no"}`,
			`{"binary_score": "Yes"}`,
		}}
		g := NewRelevanceGrader(llm, nopLogger{}, time.Second)

		filtered, err := g.Grade(context.Background(), "eigenvalue bounds", docs)
		assert.NoError(t, err)
		assert.Equal(t, []store.Document{docs[0], docs[2]}, filtered)
	})

	t.Run("all irrelevant yields empty", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{
			`{"binary_score": "no"}`,
			`{"binary_score": "no"}`,
			`{"binary_score": "no"}`,
		}}
		g := NewRelevanceGrader(llm, nopLogger{}, time.Second)

		filtered, err := g.Grade(context.Background(), "q", docs)
		assert.NoError(t, err)
		assert.Empty(t, filtered)
	})

	t.Run("no documents no calls", func(t *testing.T) {
		llm := &fakeLLM{}
		g := NewRelevanceGrader(llm, nopLogger{}, time.Second)

		filtered, err := g.Grade(context.Background(), "q", nil)
		assert.NoError(t, err)
		assert.Empty(t, filtered)
		assert.Equal(t, 0, llm.calls)
	})

	t.Run("judge error propagates", func(t *testing.T) {
		llm := &fakeLLM{err: errors.New("timeout")}
		g := NewRelevanceGrader(llm, nopLogger{}, time.Second)

		_, err := g.Grade(context.Background(), "q", docs)
		assert.Error(t, err)
	})

	t.Run("malformed output propagates", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"relevant, I think"}}
		g := NewRelevanceGrader(llm, nopLogger{}, time.Second)

		_, err := g.Grade(context.Background(), "q", docs)
		assert.Error(t, err)
	})
}
