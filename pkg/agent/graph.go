package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/pkg/store"
	"github.com/yuw136/paper-helper/pkg/websearch"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrTurnFailed wraps turn-level failures. By the time Run returns it the
// error event has already been emitted on the sink.
var ErrTurnFailed = errors.New("turn failed")

// Graph node names. They double as the node_status event payload.
const (
	NodeRoute             = "route"
	NodeRetrieve          = "retrieve"
	NodeWebSearch         = "web_search"
	NodeGradeDocuments    = "grade_documents"
	NodeTransformQuestion = "transform_question"
	NodeGenerate          = "generate"
	NodeNotFound          = "not_found"
	NodeSummarize         = "summarize_conversation"

	nodeEnd = "end"
)

// Strategy contracts around the probabilistic judges, so the deterministic
// graph logic stays testable with fixed-output fakes.
type Router interface {
	Route(ctx context.Context, question string) string
}

type Grader interface {
	Grade(ctx context.Context, question string, documents []store.Document) ([]store.Document, error)
}

type Planner interface {
	Plan(ctx context.Context, question string, excerpts []string) Plan
}

type Rewriter interface {
	Rewrite(ctx context.Context, question, paperId string) (rewritten string, escalate bool)
}

type Generator interface {
	Generate(ctx context.Context, st *State, onDelta func(string)) (string, error)
}

type Compactor interface {
	Compact(ctx context.Context, messages []Message, summary string) (string, []string, error)
}

// Retriever is the local vector-search surface the graph consumes.
type Retriever interface {
	Search(ctx context.Context, paperId, question, rewritten string, excerpts []string) []store.Document
}

// Graph is the per-turn state machine: route, retrieve or search, grade,
// then generate, retry, escalate or fail, and always compact at the end.
type Graph struct {
	router    Router
	grader    Grader
	planner   Planner
	rewriter  Rewriter
	generator Generator
	compactor Compactor
	retriever Retriever
	providers []websearch.Provider

	logger        logger.ILogger
	searchTimeout time.Duration
	externalLimit int
}

func NewGraph(
	router Router,
	grader Grader,
	planner Planner,
	rewriter Rewriter,
	generator Generator,
	compactor Compactor,
	retriever Retriever,
	providers []websearch.Provider,
	log logger.ILogger,
	searchTimeout time.Duration,
	externalLimit int,
) *Graph {
	if searchTimeout <= 0 {
		searchTimeout = 15 * time.Second
	}
	if externalLimit <= 0 {
		externalLimit = 3
	}
	return &Graph{
		router:        router,
		grader:        grader,
		planner:       planner,
		rewriter:      rewriter,
		generator:     generator,
		compactor:     compactor,
		retriever:     retriever,
		providers:     providers,
		logger:        log,
		searchTimeout: searchTimeout,
		externalLimit: externalLimit,
	}
}

// Run executes one turn. A nil error means the state carries a final
// answer (possibly a refusal) and compacted history. A non-nil error is a
// turn-level failure; compaction was still attempted so the conversation
// keeps its continuity.
func (g *Graph) Run(ctx context.Context, st *State, sink EventSink) error {
	if err := st.Validate(); err != nil {
		sink.emit(Event{Type: EventError, Error: err.Error()})
		return fmt.Errorf("%w: %v", ErrTurnFailed, err)
	}

	tracer := otel.Tracer("paper-helper/agent")

	node := NodeRoute
	for node != nodeEnd {
		sink.emit(Event{Type: EventNodeStatus, Node: node})

		ctxNode, span := tracer.Start(ctx, "agent."+node,
			trace.WithAttributes(attribute.Int("search_count", st.SearchCount)))

		next, err := g.step(ctxNode, node, st, sink)
		span.End()

		if err != nil {
			g.logger.Error("Agent", "Turn failed", map[string]interface{}{
				"node":  node,
				"error": err.Error(),
			})
			sink.emit(Event{Type: EventError, Node: node, Error: err.Error()})
			g.compact(ctx, st) // best effort, keeps conversation continuity
			return fmt.Errorf("%w at %s: %v", ErrTurnFailed, node, err)
		}
		node = next
	}
	return nil
}

func (g *Graph) step(ctx context.Context, node string, st *State, sink EventSink) (string, error) {
	switch node {
	case NodeRoute:
		return g.router.Route(ctx, st.OriginalQuestion), nil

	case NodeRetrieve:
		g.retrieve(ctx, st)
		return NodeGradeDocuments, nil

	case NodeWebSearch:
		g.webSearch(ctx, st)
		return NodeGradeDocuments, nil

	case NodeGradeDocuments:
		filtered, err := g.grader.Grade(ctx, st.CurrentQuestion, st.Documents)
		if err != nil {
			return "", err
		}
		st.Documents = filtered
		return g.decideToGenerate(st), nil

	case NodeTransformQuestion:
		rewritten, escalate := g.rewriter.Rewrite(ctx, st.OriginalQuestion, st.PaperId)
		if escalate {
			return NodeWebSearch, nil
		}
		st.CurrentQuestion = rewritten
		return NodeRetrieve, nil

	case NodeGenerate:
		answer, err := g.generator.Generate(ctx, st, func(delta string) {
			sink.emit(Event{Type: EventLLMStream, Node: NodeGenerate, Chunk: delta})
		})
		if err != nil {
			return "", err
		}
		st.Answer = answer
		st.AppendMessage(newAiMessage(answer))
		return NodeSummarize, nil

	case NodeNotFound:
		st.Answer = NotFoundAnswer
		sink.emit(Event{Type: EventLLMStream, Node: NodeNotFound, Chunk: NotFoundAnswer})
		st.AppendMessage(newAiMessage(NotFoundAnswer))
		return NodeSummarize, nil

	case NodeSummarize:
		g.compact(ctx, st)
		return nodeEnd, nil

	default:
		return "", fmt.Errorf("unknown graph node %q", node)
	}
}

// decideToGenerate is the conditional edge after grading. The branches are
// mutually exclusive and exhaustive over the grading outcome.
func (g *Graph) decideToGenerate(st *State) string {
	if len(st.Documents) > 0 {
		return NodeGenerate
	}
	if st.Source == SourceLocal {
		if st.SearchCount <= 1 {
			return NodeTransformQuestion
		}
		return NodeWebSearch
	}
	return NodeNotFound
}

func (g *Graph) retrieve(ctx context.Context, st *State) {
	rewritten := ""
	if st.CurrentQuestion != st.OriginalQuestion {
		rewritten = st.CurrentQuestion
	}
	docs := g.retriever.Search(ctx, st.PaperId, st.OriginalQuestion, rewritten, st.UserExcerpts)

	st.SemanticDocs = docs
	st.Documents = docs
	st.SearchCount++

	g.logger.Info("Agent", "Local retrieval done", map[string]interface{}{
		"paper_id":     st.PaperId,
		"documents":    len(docs),
		"search_count": st.SearchCount,
	})
}

// webSearch runs the planner, fans the selected adapters out in parallel
// and barrier-joins them. Adapter failures degrade to empty. The merged
// working set follows a fixed source order so grading sees a deterministic
// sequence regardless of adapter completion order.
func (g *Graph) webSearch(ctx context.Context, st *State) {
	plan := g.planner.Plan(ctx, st.OriginalQuestion, st.UserExcerpts)
	st.SelectedTools = plan.Tools
	st.RetrievalReason = plan.Reason
	st.RetrievalConfidence = plan.Confidence

	selected := make(map[string]bool, len(plan.Tools))
	for _, t := range plan.Tools {
		selected[t] = true
	}

	st.WebDocs = nil
	st.ArxivDocs = nil
	st.GlobalDocs = nil

	eg, egCtx := errgroup.WithContext(ctx)
	results := make([][]store.Document, len(g.providers))
	for i, provider := range g.providers {
		if !selected[toolForSource(provider.Name())] {
			continue
		}
		i, provider := i, provider
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(egCtx, g.searchTimeout)
			defer cancel()

			docs, err := provider.Search(callCtx, st.CurrentQuestion, g.externalLimit)
			if err != nil {
				g.logger.Warn("Agent", "External search adapter failed", map[string]interface{}{
					"provider": provider.Name(),
					"error":    err.Error(),
				})
				return nil // degrade to empty, never fail the fan-out
			}
			results[i] = docs
			return nil
		})
	}
	_ = eg.Wait()

	for i := range g.providers {
		for _, doc := range results[i] {
			switch doc.Source {
			case store.SourceArxiv:
				st.ArxivDocs = append(st.ArxivDocs, doc)
			case store.SourceGlobalDB:
				st.GlobalDocs = append(st.GlobalDocs, doc)
			default:
				st.WebDocs = append(st.WebDocs, doc)
			}
		}
	}

	merged := make([]store.Document, 0, len(st.WebDocs)+len(st.ArxivDocs)+len(st.GlobalDocs))
	merged = append(merged, st.WebDocs...)
	merged = append(merged, st.ArxivDocs...)
	merged = append(merged, st.GlobalDocs...)

	st.Documents = merged
	st.Source = SourceWeb

	g.logger.Info("Agent", "External search done", map[string]interface{}{
		"tools":      plan.Tools,
		"confidence": plan.Confidence,
		"documents":  len(merged),
	})
}

// compact folds old history into the summary. Compaction failure is logged
// and swallowed: losing one compaction never loses the turn.
func (g *Graph) compact(ctx context.Context, st *State) {
	summary, removed, err := g.compactor.Compact(ctx, st.Messages, st.Summary)
	if err != nil {
		g.logger.Warn("Agent", "Compaction failed, keeping full history", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if len(removed) == 0 {
		return
	}

	removedSet := make(map[string]bool, len(removed))
	for _, id := range removed {
		removedSet[id] = true
	}
	surviving := make([]Message, 0, len(st.Messages))
	for _, m := range st.Messages {
		if !removedSet[m.Id] {
			surviving = append(surviving, m)
		}
	}

	st.Summary = summary
	st.Messages = surviving
	st.RemovedMessageIds = append(st.RemovedMessageIds, removed...)
}

// toolForSource maps an adapter's source tag to its planner tool id.
func toolForSource(source string) string {
	switch source {
	case store.SourceArxiv:
		return ToolArxivSearch
	case store.SourceGlobalDB:
		return ToolGlobalDBSearch
	default:
		return ToolWebSearch
	}
}

func newAiMessage(content string) Message {
	return Message{
		Id:        uuid.NewString(),
		Role:      "ai",
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}
