package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetrievalPlannerPlan(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		err            error
		wantTools      []string
		wantConfidence float64
	}{
		{
			name:           "single tool",
			response:       `{"tools": ["arxiv_search"], "reason": "related work", "confidence": 0.9}`,
			wantTools:      []string{ToolArxivSearch},
			wantConfidence: 0.9,
		},
		{
			name:           "duplicates and casing normalized",
			response:       `{"tools": ["Web_Search", "web_search", "ARXIV_SEARCH"], "confidence": 0.5}`,
			wantTools:      []string{ToolWebSearch, ToolArxivSearch},
			wantConfidence: 0.5,
		},
		{
			name:           "confidence clamped",
			response:       `{"tools": ["global_db_search"], "confidence": 3.2}`,
			wantTools:      []string{ToolGlobalDBSearch},
			wantConfidence: 1,
		},
		{
			name:           "judge error fails open",
			err:            errors.New("502"),
			wantTools:      AllTools(),
			wantConfidence: 0,
		},
		{
			name:           "garbage output fails open",
			response:       "I'd search the web if I were you",
			wantTools:      AllTools(),
			wantConfidence: 0,
		},
		{
			name:           "only unknown tools fails open",
			response:       `{"tools": ["bing", "library_catalog"], "confidence": 0.7}`,
			wantTools:      AllTools(),
			wantConfidence: 0,
		},
		{
			name:           "empty tool list fails open",
			response:       `{"tools": [], "confidence": 0.7}`,
			wantTools:      AllTools(),
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{responses: []string{tt.response}, err: tt.err}
			p := NewRetrievalPlanner(llm, nopLogger{}, time.Second, 3)

			plan := p.Plan(context.Background(), "question", nil)
			assert.Equal(t, tt.wantTools, plan.Tools)
			assert.Equal(t, tt.wantConfidence, plan.Confidence)
		})
	}
}

func TestRetrievalPlannerExcerptCap(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"tools": ["web_search"], "confidence": 1}`}}
	p := NewRetrievalPlanner(llm, nopLogger{}, time.Second, 2)

	excerpts := []string{"first", "second", "third", "fourth"}
	p.Plan(context.Background(), "question", excerpts)

	if assert.Len(t, llm.history, 1) {
		user := llm.history[0][1].Content
		assert.Contains(t, user, "first")
		assert.Contains(t, user, "second")
		assert.NotContains(t, user, "third")
		assert.NotContains(t, user, "fourth")
	}
}
