package store

// Source tags identify where a candidate document came from. The merge step
// of the search fan-out orders buffers by source, so these values double as
// the deterministic merge order.
const (
	SourceSemantic = "semantic"
	SourceWeb      = "web"
	SourceArxiv    = "arxiv"
	SourceGlobalDB = "global_db"
)

// Document is a normalized candidate context snippet for the agent.
// Local chunks carry only Content (plus the owning paper's title); external
// results additionally carry a URL for citation.
type Document struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

// External reports whether the document came from outside the local corpus.
func (d Document) External() bool {
	return d.Source == SourceWeb || d.Source == SourceArxiv
}
