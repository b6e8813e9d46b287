package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
)

const routerSystemPrompt = `You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains documents about a specific mathematics topic (Local DB).
The web_search allows searching the Arxiv online database.
The vectorstore is the default choice.
Use the vectorstore for general questions about definitions, theorems, proofs, especially when
the user asks about "this paper", "the paper", "the main theorem", "the main result", "the main proof", etc.
Use web_search only if the user explicitly asks for "other results", "related results", "related papers", "related topics", etc.

Respond with JSON only, no other text:
{"data_source": "web_search"} or {"data_source": "vectorstore"}`

// QuestionRouter classifies a question as a local-corpus lookup or an
// explicit request for external material. Judge failures default to local
// retrieval: sending a targeted question to the web is the worse mistake,
// and the escalation path still reaches the web if local search fails.
type QuestionRouter struct {
	deduce  llm.LLMProvider
	logger  logger.ILogger
	timeout time.Duration
}

func NewQuestionRouter(deduce llm.LLMProvider, log logger.ILogger, timeout time.Duration) *QuestionRouter {
	return &QuestionRouter{
		deduce:  deduce,
		logger:  log,
		timeout: timeout,
	}
}

// Route returns NodeWebSearch or NodeRetrieve.
func (r *QuestionRouter) Route(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.deduce.Chat(ctx, []llm.Message{
		{Role: "system", Content: routerSystemPrompt},
		{Role: "user", Content: question},
	}, llm.WithTemperature(0))
	if err != nil {
		r.logger.Warn("Agent", "Router judge failed, defaulting to local retrieval", map[string]interface{}{
			"error": err.Error(),
		})
		return NodeRetrieve
	}

	var decision struct {
		DataSource string `json:"data_source"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &decision); err != nil {
		r.logger.Warn("Agent", "Router output malformed, defaulting to local retrieval", map[string]interface{}{
			"response": response,
		})
		return NodeRetrieve
	}

	if strings.TrimSpace(decision.DataSource) == "web_search" {
		return NodeWebSearch
	}
	return NodeRetrieve
}
