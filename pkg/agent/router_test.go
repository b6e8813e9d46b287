package agent

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQuestionRouterRoute(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     string
	}{
		{
			name:     "vectorstore",
			response: `{"data_source": "vectorstore"}`,
			want:     NodeRetrieve,
		},
		{
			name:     "web search",
			response: `{"data_source": "web_search"}`,
			want:     NodeWebSearch,
		},
		{
			name:     "fenced output",
			response: "```json\n{\"data_source\": \"web_search\"}\n```",
			want:     NodeWebSearch,
		},
		{
			name:     "unknown source defaults local",
			response: `{"data_source": "library"}`,
			want:     NodeRetrieve,
		},
		{
			name:     "malformed output defaults local",
			response: "the vectorstore, probably",
			want:     NodeRetrieve,
		},
		{
			name: "judge error defaults local",
			err:  errors.New("connection refused"),
			want: NodeRetrieve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{responses: []string{tt.response}, err: tt.err}
			r := NewQuestionRouter(llm, nopLogger{}, time.Second)

			got := r.Route(context.Background(), "What is the main result?")
			if got != tt.want {
				t.Errorf("Route() = %q, want %q", got, tt.want)
			}
		})
	}
}
