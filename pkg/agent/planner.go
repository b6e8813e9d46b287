package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
)

// External-search tool identifiers the planner may select.
const (
	ToolWebSearch      = "web_search"
	ToolArxivSearch    = "arxiv_search"
	ToolGlobalDBSearch = "global_db_search"
)

// AllTools returns the full tool set, the fail-open default.
func AllTools() []string {
	return []string{ToolWebSearch, ToolArxivSearch, ToolGlobalDBSearch}
}

const plannerSystemPrompt = `You are a retrieval planner for a mathematics research assistant.
Given a user question (and optionally a few passages the user highlighted),
choose which external search tools to run. Available tools:
- "web_search": open web search. Include it for broad or ambiguous questions.
- "arxiv_search": scholarly abstract search on arXiv. Include it when the user
  asks about related work, related papers or related results.
- "global_db_search": search across all papers already in the local database.
  Prefer it when the question names concrete papers, theorems or references.

Respond with JSON only, no other text:
{"tools": ["web_search", ...], "reason": "...", "confidence": 0.0}`

// Plan is the planner's decision: which external tools to run and why.
type Plan struct {
	Tools      []string `json:"tools"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
}

// RetrievalPlanner asks a reasoning judge which external search tools fit
// the question. It fails open: on judge error or garbage output every tool
// is selected, trading cost for recall.
type RetrievalPlanner struct {
	deduce      llm.LLMProvider
	logger      logger.ILogger
	timeout     time.Duration
	maxExcerpts int
}

func NewRetrievalPlanner(deduce llm.LLMProvider, log logger.ILogger, timeout time.Duration, maxExcerpts int) *RetrievalPlanner {
	if maxExcerpts <= 0 {
		maxExcerpts = 3
	}
	return &RetrievalPlanner{
		deduce:      deduce,
		logger:      log,
		timeout:     timeout,
		maxExcerpts: maxExcerpts,
	}
}

func (p *RetrievalPlanner) Plan(ctx context.Context, question string, excerpts []string) Plan {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	for i, excerpt := range excerpts {
		if i >= p.maxExcerpts {
			break
		}
		fmt.Fprintf(&sb, "\n\nHighlighted passage %d:\n%s", i+1, excerpt)
	}

	response, err := p.deduce.Chat(ctx, []llm.Message{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: sb.String()},
	}, llm.WithTemperature(0))
	if err != nil {
		p.logger.Warn("Agent", "Planner judge failed, selecting all tools", map[string]interface{}{
			"error": err.Error(),
		})
		return p.failOpen("planner error: " + err.Error())
	}

	var plan Plan
	if err := json.Unmarshal([]byte(extractJSON(response)), &plan); err != nil {
		p.logger.Warn("Agent", "Planner output malformed, selecting all tools", map[string]interface{}{
			"response": response,
		})
		return p.failOpen("planner output malformed")
	}

	plan.Tools = normalizeTools(plan.Tools)
	if len(plan.Tools) == 0 {
		p.logger.Warn("Agent", "Planner selected no valid tools, selecting all tools", map[string]interface{}{
			"response": response,
		})
		return p.failOpen("planner selected no valid tools")
	}

	plan.Confidence = clamp01(plan.Confidence)
	return plan
}

func (p *RetrievalPlanner) failOpen(reason string) Plan {
	return Plan{
		Tools:      AllTools(),
		Reason:     reason,
		Confidence: 0,
	}
}

// normalizeTools deduplicates and drops identifiers outside the known set.
func normalizeTools(tools []string) []string {
	known := map[string]bool{
		ToolWebSearch:      true,
		ToolArxivSearch:    true,
		ToolGlobalDBSearch: true,
	}
	seen := make(map[string]bool, len(tools))
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		t = strings.TrimSpace(strings.ToLower(t))
		if !known[t] || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
