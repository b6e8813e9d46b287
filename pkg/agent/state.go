package agent

import (
	"fmt"

	"github.com/yuw136/paper-helper/pkg/store"
)

// Source regimes for the failure-branch decision.
const (
	SourceLocal = "local"
	SourceWeb   = "web"
)

// Message is one entry of the thread's conversation history.
type Message struct {
	Id        string   `json:"id"`
	Role      string   `json:"role"` // "user" or "ai"
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"` // client milliseconds
	Excerpts  []string `json:"excerpts,omitempty"`
}

// State is the conversation state threaded through one turn of the graph.
// It is exclusively owned by the in-flight traversal: hydrated from the
// checkpoint at turn start, mutated node by node, persisted at turn end.
type State struct {
	// Turn input, immutable after NewTurnState.
	OriginalQuestion string
	PaperId          string // empty means no paper scope
	PaperTopic       string
	UserExcerpts     []string

	// CurrentQuestion starts equal to OriginalQuestion and is replaced by
	// the rewriter.
	CurrentQuestion string

	// Documents is the working set of candidate snippets. Each retrieval
	// or grading step replaces it, never appends.
	Documents []store.Document

	// Per-source buffers populated by the search fan-out, merged before
	// grading.
	SemanticDocs []store.Document
	WebDocs      []store.Document
	ArxivDocs    []store.Document
	GlobalDocs   []store.Document

	// Planner output, observability only.
	SelectedTools       []string
	RetrievalReason     string
	RetrievalConfidence float64

	// SearchCount counts retrieval executions this turn. It increments
	// only in the retrieve node and resets at turn start.
	SearchCount int

	// Source is the active retrieval regime, SourceLocal or SourceWeb.
	Source string

	Answer  string
	Summary string

	// Messages is the full history including this turn's user message.
	// The compactor may fold a prefix into Summary; folded ids land in
	// RemovedMessageIds so the persistence layer can prune them.
	Messages          []Message
	RemovedMessageIds []string
}

// NewTurnState builds a validated turn-entry state. The prior summary and
// message history come from the thread's checkpoint; the user message for
// this turn must already be appended to messages.
func NewTurnState(question, paperId, paperTopic, summary string, messages []Message, excerpts []string) (*State, error) {
	s := &State{
		OriginalQuestion: question,
		CurrentQuestion:  question,
		PaperId:          paperId,
		PaperTopic:       paperTopic,
		UserExcerpts:     excerpts,
		SearchCount:      0,
		Source:           SourceLocal,
		Summary:          summary,
		Messages:         messages,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the required turn-entry fields.
func (s *State) Validate() error {
	if s.OriginalQuestion == "" {
		return fmt.Errorf("state: original question is required")
	}
	if s.CurrentQuestion == "" {
		return fmt.Errorf("state: current question is required")
	}
	if s.Source != SourceLocal && s.Source != SourceWeb {
		return fmt.Errorf("state: invalid source %q", s.Source)
	}
	if s.SearchCount < 0 {
		return fmt.Errorf("state: negative search count %d", s.SearchCount)
	}
	for i, m := range s.Messages {
		if m.Id == "" {
			return fmt.Errorf("state: message %d has no id", i)
		}
		if m.Role == "" {
			return fmt.Errorf("state: message %d has no role", i)
		}
	}
	return nil
}

// AppendMessage appends to the history, preserving caller-visible order.
func (s *State) AppendMessage(m Message) {
	s.Messages = append(s.Messages, m)
}
