package websearch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yuw136/paper-helper/pkg/store"
)

const arxivExportURL = "http://export.arxiv.org/api/query"

// Arxiv queries the arXiv export API (Atom feed) for paper abstracts.
type Arxiv struct {
	BaseURL string
	client  *http.Client
}

func NewArxiv() *Arxiv {
	return &Arxiv{
		BaseURL: arxivExportURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func NewArxivWithClient(baseURL string, client *http.Client) *Arxiv {
	if baseURL == "" {
		baseURL = arxivExportURL
	}
	return &Arxiv{BaseURL: baseURL, client: client}
}

func (a *Arxiv) Name() string {
	return store.SourceArxiv
}

// atomFeed mirrors the subset of the arXiv Atom response we consume.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Summary string     `xml:"summary"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

func (e atomEntry) pageURL() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Type == "text/html" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

// Search runs a relevance-sorted full-text query against the export API.
func (a *Arxiv) Search(ctx context.Context, query string, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = 3
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", limit))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv http %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv atom decode: %w", err)
	}

	results := make([]store.Document, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, store.Document{
			Source:  store.SourceArxiv,
			Title:   normalizeAtomText(entry.Title),
			URL:     entry.pageURL(),
			Content: normalizeAtomText(entry.Summary),
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// normalizeAtomText collapses the newline-wrapped text arXiv returns into
// single-line strings.
func normalizeAtomText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
