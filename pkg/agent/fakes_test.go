package agent

import (
	"context"
	"fmt"

	"github.com/yuw136/paper-helper/pkg/llm"
	"github.com/yuw136/paper-helper/pkg/store"
)

// nopLogger satisfies logger.ILogger without writing anywhere.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeLLM returns canned responses in call order, or a fixed error.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
	history   [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = append(f.history, history)
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("fakeLLM: no response for call %d", f.calls)
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, options ...llm.Option) (string, error) {
	resp, err := f.Chat(ctx, history, options...)
	if err != nil {
		return "", err
	}
	if handler != nil {
		handler(resp)
	}
	return resp, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

// Fixed-output graph components.

type fakeRouter struct{ next string }

func (f fakeRouter) Route(ctx context.Context, question string) string { return f.next }

// fakeGrader returns canned grading results in call order.
type fakeGrader struct {
	results [][]store.Document
	err     error
	calls   int
}

func (f *fakeGrader) Grade(ctx context.Context, question string, documents []store.Document) ([]store.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.results) {
		return nil, fmt.Errorf("fakeGrader: no result for call %d", f.calls)
	}
	res := f.results[f.calls]
	f.calls++
	return res, nil
}

type fakePlanner struct{ plan Plan }

func (f fakePlanner) Plan(ctx context.Context, question string, excerpts []string) Plan {
	return f.plan
}

type fakeRewriter struct {
	rewritten string
	escalate  bool
	calls     int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, question, paperId string) (string, bool) {
	f.calls++
	return f.rewritten, f.escalate
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, st *State, onDelta func(string)) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if onDelta != nil {
		onDelta(f.answer)
	}
	return f.answer, nil
}

type fakeCompactor struct {
	summary string
	removed []string
	err     error
	calls   int
}

func (f *fakeCompactor) Compact(ctx context.Context, messages []Message, summary string) (string, []string, error) {
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	if f.summary == "" && f.removed == nil {
		return summary, nil, nil
	}
	return f.summary, f.removed, nil
}

// fakeRetriever returns canned document sets in call order and records how
// many retrievals ran.
type fakeRetriever struct {
	results [][]store.Document
	calls   int
}

func (f *fakeRetriever) Search(ctx context.Context, paperId, question, rewritten string, excerpts []string) []store.Document {
	var docs []store.Document
	if f.calls < len(f.results) {
		docs = f.results[f.calls]
	}
	f.calls++
	return docs
}

// fakeProvider is a websearch.Provider with a fixed name and result set.
type fakeProvider struct {
	name  string
	docs  []store.Document
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, limit int) ([]store.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// collectEvents returns a sink that appends every event to the given slice.
func collectEvents(events *[]Event) EventSink {
	return func(e Event) {
		*events = append(*events, e)
	}
}

func localDoc(content string) store.Document {
	return store.Document{Source: store.SourceSemantic, Content: content}
}

func userMsg(id, content string) Message {
	return Message{Id: id, Role: "user", Content: content, Timestamp: 1}
}

func aiMsg(id, content string) Message {
	return Message{Id: id, Role: "ai", Content: content, Timestamp: 2}
}
