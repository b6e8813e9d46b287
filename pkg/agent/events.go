package agent

// Event types mirrored to the client over the streaming channel.
const (
	EventNodeStatus = "node_status"
	EventLLMStream  = "llm_stream"
	EventError      = "error"
	EventDone       = "done"
)

// Event is one progress notification from a turn traversal.
type Event struct {
	Type  string `json:"type"`
	Node  string `json:"node,omitempty"`
	Chunk string `json:"chunk,omitempty"`
	Error string `json:"error,omitempty"`
}

// EventSink receives graph events during a turn. A nil sink is allowed;
// the graph then runs silently.
type EventSink func(Event)

func (sink EventSink) emit(e Event) {
	if sink != nil {
		sink(e)
	}
}
