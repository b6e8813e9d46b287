package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
	"github.com/yuw136/paper-helper/pkg/store"
)

const graderSystemPrompt = `You are a grader assessing relevance of a retrieved document to a user question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
If the document answers the question directly or indirectly, grade it as relevant.
If the document is irrelevant to the question, grade it as irrelevant.

Respond with JSON only, no other text:
{"binary_score": "yes"} or {"binary_score": "no"}`

// RelevanceGrader filters candidate documents down to the ones a reasoning
// judge considers relevant to the question. Each document is graded
// independently; the output is an order-preserving subsequence of the
// input. A judge invocation failure fails the whole turn: a wrongly graded
// set materially changes the answer, so there is no safe local fallback.
type RelevanceGrader struct {
	deduce  llm.LLMProvider
	logger  logger.ILogger
	timeout time.Duration
}

func NewRelevanceGrader(deduce llm.LLMProvider, log logger.ILogger, timeout time.Duration) *RelevanceGrader {
	return &RelevanceGrader{
		deduce:  deduce,
		logger:  log,
		timeout: timeout,
	}
}

func (g *RelevanceGrader) Grade(ctx context.Context, question string, documents []store.Document) ([]store.Document, error) {
	filtered := make([]store.Document, 0, len(documents))
	for i, doc := range documents {
		relevant, err := g.gradeOne(ctx, question, doc)
		if err != nil {
			return nil, fmt.Errorf("grade document %d: %w", i, err)
		}
		if relevant {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

func (g *RelevanceGrader) gradeOne(ctx context.Context, question string, doc store.Document) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	user := fmt.Sprintf("Retrieved document: \n\n %s \n\n User question: %s", doc.Content, question)
	response, err := g.deduce.Chat(ctx, []llm.Message{
		{Role: "system", Content: graderSystemPrompt},
		{Role: "user", Content: user},
	}, llm.WithTemperature(0))
	if err != nil {
		return false, err
	}

	var score struct {
		BinaryScore string `json:"binary_score"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &score); err != nil {
		return false, fmt.Errorf("malformed grader output %q: %w", response, err)
	}

	return strings.EqualFold(strings.TrimSpace(score.BinaryScore), "yes"), nil
}
