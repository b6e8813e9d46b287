package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/llm"
)

const compactorSystemPrompt = `Distill the following chat history into a single summary paragraph.
Importantly, keep track of mathematical definitions, concepts, and theorems discussed.`

// ConversationCompactor folds messages older than the retention window
// into a cumulative summary. The most recent K messages always survive
// verbatim; when the whole history fits in the window the compactor is a
// no-op.
type ConversationCompactor struct {
	writing      llm.LLMProvider
	logger       logger.ILogger
	retainWindow int
}

func NewConversationCompactor(writing llm.LLMProvider, log logger.ILogger, retainWindow int) *ConversationCompactor {
	if retainWindow <= 0 {
		retainWindow = 6
	}
	return &ConversationCompactor{
		writing:      writing,
		logger:       log,
		retainWindow: retainWindow,
	}
}

// Compact returns the updated summary and the ids of the messages folded
// into it. An unchanged summary and no removed ids means no compaction
// happened.
func (c *ConversationCompactor) Compact(ctx context.Context, messages []Message, summary string) (string, []string, error) {
	if len(messages) <= c.retainWindow {
		return summary, nil, nil
	}

	toSummarize := messages[:len(messages)-c.retainWindow]

	var conversation strings.Builder
	for _, msg := range toSummarize {
		switch msg.Role {
		case "user":
			fmt.Fprintf(&conversation, "User: %s\n", msg.Content)
		default:
			fmt.Fprintf(&conversation, "AI: %s\n", msg.Content)
		}
	}

	system := compactorSystemPrompt
	if summary != "" {
		system += fmt.Sprintf("\n\nCurrent Summary: %s", summary)
	}

	response, err := c.writing.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf("Conversation to summarize:\n\n%s", conversation.String())},
	})
	if err != nil {
		return "", nil, fmt.Errorf("summarize conversation: %w", err)
	}

	removed := make([]string, 0, len(toSummarize))
	for _, msg := range toSummarize {
		removed = append(removed, msg.Id)
	}
	return strings.TrimSpace(response), removed, nil
}
