package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func historyOf(n int) []Message {
	messages := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			messages = append(messages, userMsg(fmt.Sprintf("m%d", i), fmt.Sprintf("question %d", i)))
		} else {
			messages = append(messages, aiMsg(fmt.Sprintf("m%d", i), fmt.Sprintf("answer %d", i)))
		}
	}
	return messages
}

func TestConversationCompactorCompact(t *testing.T) {
	t.Run("history within window is a no-op", func(t *testing.T) {
		llm := &fakeLLM{}
		c := NewConversationCompactor(llm, nopLogger{}, 6)

		summary, removed, err := c.Compact(context.Background(), historyOf(6), "existing")
		assert.NoError(t, err)
		assert.Equal(t, "existing", summary)
		assert.Empty(t, removed)
		assert.Equal(t, 0, llm.calls)
	})

	t.Run("folds everything before the window", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"They discussed eigenvalues.\n"}}
		c := NewConversationCompactor(llm, nopLogger{}, 6)

		messages := historyOf(10)
		summary, removed, err := c.Compact(context.Background(), messages, "")
		assert.NoError(t, err)
		assert.Equal(t, "They discussed eigenvalues.", summary)
		assert.Equal(t, []string{"m0", "m1", "m2", "m3"}, removed)

		// The last K messages never reach the model.
		user := llm.history[0][1].Content
		assert.Contains(t, user, "question 2")
		assert.NotContains(t, user, "question 4")
		assert.NotContains(t, user, "answer 9")
	})

	t.Run("existing summary feeds the prompt", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"updated"}}
		c := NewConversationCompactor(llm, nopLogger{}, 2)

		_, _, err := c.Compact(context.Background(), historyOf(4), "previous summary")
		assert.NoError(t, err)
		assert.Contains(t, llm.history[0][0].Content, "Current Summary: previous summary")
	})

	t.Run("roles render as speaker labels", func(t *testing.T) {
		llm := &fakeLLM{responses: []string{"s"}}
		c := NewConversationCompactor(llm, nopLogger{}, 1)

		messages := []Message{
			userMsg("m1", "what is a graph"),
			aiMsg("m2", "a set of vertices and edges"),
			userMsg("m3", "and a tree?"),
		}
		_, removed, err := c.Compact(context.Background(), messages, "")
		assert.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, removed)

		user := llm.history[0][1].Content
		assert.True(t, strings.Contains(user, "User: what is a graph"))
		assert.True(t, strings.Contains(user, "AI: a set of vertices and edges"))
	})

	t.Run("model failure surfaces", func(t *testing.T) {
		llm := &fakeLLM{err: errors.New("overloaded")}
		c := NewConversationCompactor(llm, nopLogger{}, 2)

		_, _, err := c.Compact(context.Background(), historyOf(4), "")
		assert.Error(t, err)
	})
}
