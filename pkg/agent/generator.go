package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
	"github.com/yuw136/paper-helper/pkg/store"
)

// RefusalAnswer is what the generator says when the supplied context does
// not support an answer. NotFoundAnswer is the exhausted-search outcome,
// emitted by the graph without a generation call. The two must stay
// distinguishable downstream.
const (
	RefusalAnswer  = "Sorry, I don't find relevant information."
	NotFoundAnswer = "Sorry, I searched both locally and on Arxiv but couldn't find relevant info."
)

const generatorSystemPrompt = `You are an expert researcher in the field of mathematics.
You are given a question and a list of documents as context that are relevant to the question.
Use the context to answer the question. If you don't think the answer is in the context,
say "%s".
Keep the answer rigorous and use LaTeX to format the math equations in the answer.

Summary of the history of the conversation:
%s

Context:
%s

Question:
%s`

// AnswerGenerator produces the final grounded answer, streaming deltas as
// the writing model produces them. Generation failure is a turn-level
// failure, distinct from the refusal (which is a successful generation
// with a negative answer).
type AnswerGenerator struct {
	writing llm.LLMProvider
	logger  logger.ILogger
}

func NewAnswerGenerator(writing llm.LLMProvider, log logger.ILogger) *AnswerGenerator {
	return &AnswerGenerator{
		writing: writing,
		logger:  log,
	}
}

func (g *AnswerGenerator) Generate(ctx context.Context, st *State, onDelta func(string)) (string, error) {
	system := fmt.Sprintf(generatorSystemPrompt,
		RefusalAnswer,
		st.Summary,
		formatContext(st.Documents),
		st.CurrentQuestion,
	)

	history := make([]llm.Message, 0, len(st.Messages)+1)
	history = append(history, llm.Message{Role: "system", Content: system})
	for _, m := range st.Messages {
		role := "user"
		if m.Role != "user" {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}

	answer, err := g.writing.ChatStream(ctx, history, func(delta string) {
		if onDelta != nil {
			onDelta(delta)
		}
	})
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}

	if citations := formatCitations(st.Documents); citations != "" {
		if onDelta != nil {
			onDelta(citations)
		}
		answer += citations
	}
	return answer, nil
}

// formatContext joins document bodies; external documents keep their title
// and URL so the model can attribute claims.
func formatContext(docs []store.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.External() {
			parts = append(parts, fmt.Sprintf("Title: %s\nURL: %s\n%s", doc.Title, doc.URL, doc.Content))
		} else {
			parts = append(parts, doc.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// formatCitations builds the trailing source list for externally derived
// context. Local-only context produces no citations.
func formatCitations(docs []store.Document) string {
	seen := make(map[string]bool)
	var lines []string
	for _, doc := range docs {
		if !doc.External() || doc.URL == "" || seen[doc.URL] {
			continue
		}
		seen[doc.URL] = true
		lines = append(lines, fmt.Sprintf("- %s (%s)", doc.Title, doc.URL))
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\nSources:\n" + strings.Join(lines, "\n")
}
