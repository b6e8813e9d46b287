package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
	"github.com/yuw136/paper-helper/pkg/store"
)

const rewriterSystemPrompt = `You are an expert researcher.
The user has asked a question. To find the exact answer in the database, we need to align the search query with the terminology used in the papers.

Here are the **Introduction/Abstract segments** of the target paper(s):
%s

Your task:
The aim is to rewrite the user's question to be more specific using the terms found in the text.
1. Analyze the terminology, notation, and definitions used in the text above.
2. Analyze the user's question and identify the key concepts and terms. Relate them to the terminology found in the text. If some concepts in the user's question are very close to the terminology found in the text, replace them with the terminology found in the text.
3. If the user's question is not related to the terminology found in the text, rewrite minimally.

Respond with the rewritten question only, no other text.`

// openingFragments is the grounding source for rewrites: the leading
// chunks of a pinned paper, or the nearest opening chunks across the
// corpus when no paper is pinned.
type openingFragments interface {
	OpeningChunksByPaper(ctx context.Context, paperId string) []store.Document
	OpeningChunksByQuery(ctx context.Context, query string, limit int) []store.Document
}

// QueryRewriter reformulates a question using the source text's own
// terminology. With no grounding fragments at all it signals escalation to
// external search instead of rewriting blind.
type QueryRewriter struct {
	deduce    llm.LLMProvider
	fragments openingFragments
	logger    logger.ILogger
	timeout   time.Duration
	topK      int
}

func NewQueryRewriter(deduce llm.LLMProvider, fragments openingFragments, log logger.ILogger, timeout time.Duration, topK int) *QueryRewriter {
	if topK <= 0 {
		topK = 2
	}
	return &QueryRewriter{
		deduce:    deduce,
		fragments: fragments,
		logger:    log,
		timeout:   timeout,
		topK:      topK,
	}
}

// Rewrite returns the rewritten question, or escalate=true when no
// grounding fragments exist. A judge failure keeps the question unchanged
// so the retry proceeds with the original wording.
func (r *QueryRewriter) Rewrite(ctx context.Context, question, paperId string) (rewritten string, escalate bool) {
	var docs []store.Document
	if paperId != "" {
		docs = r.fragments.OpeningChunksByPaper(ctx, paperId)
	} else {
		docs = r.fragments.OpeningChunksByQuery(ctx, question, r.topK)
	}

	if len(docs) == 0 {
		r.logger.Info("Agent", "No grounding fragments for rewrite, escalating to external search", map[string]interface{}{
			"paper_id": paperId,
		})
		return "", true
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Content)
	}
	context_ := strings.Join(parts, "\n\n")

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.deduce.Chat(ctx, []llm.Message{
		{Role: "system", Content: fmt.Sprintf(rewriterSystemPrompt, context_)},
		{Role: "user", Content: question},
	}, llm.WithTemperature(0))
	if err != nil {
		r.logger.Warn("Agent", "Rewrite judge failed, retrying with original question", map[string]interface{}{
			"error": err.Error(),
		})
		return question, false
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return question, false
	}
	return response, false
}
