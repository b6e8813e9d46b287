package websearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuw136/paper-helper/pkg/store"
	"github.com/stretchr/testify/assert"
)

// rewriteTransport redirects every request to the test server, since the
// Tavily endpoint is fixed.
type rewriteTransport struct {
	server *httptest.Server
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, _ := req.URL.Parse(t.server.URL + req.URL.Path)
	req.URL = target
	return t.server.Client().Transport.RoundTrip(req)
}

func newTavilyAgainst(server *httptest.Server, apiKey string) *Tavily {
	return NewTavilyWithClient(apiKey, "", &http.Client{Transport: rewriteTransport{server: server}})
}

func TestTavilySearch(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Expander graphs survey", "url": "https://example.org/survey", "content": "A survey of expander graphs."},
				{"title": "Second", "url": "https://example.org/second", "content": "More."},
				{"title": "Third", "url": "https://example.org/third", "content": "Even more."},
			},
		})
	}))
	defer server.Close()

	tv := newTavilyAgainst(server, "tvly-key")
	docs, err := tv.Search(context.Background(), "expander graphs", 2)

	assert.NoError(t, err)
	assert.Equal(t, "expander graphs", gotBody["query"])
	assert.Equal(t, "tvly-key", gotBody["api_key"])
	assert.Equal(t, "basic", gotBody["depth"])

	// The limit caps the result set even when the API returns more.
	if assert.Len(t, docs, 2) {
		assert.Equal(t, store.SourceWeb, docs[0].Source)
		assert.Equal(t, "Expander graphs survey", docs[0].Title)
		assert.Equal(t, "https://example.org/survey", docs[0].URL)
	}
}

func TestTavilySearchMissingKey(t *testing.T) {
	tv := NewTavily("  ", "")
	_, err := tv.Search(context.Background(), "q", 3)
	assert.Error(t, err)
}

func TestTavilySearchRetriesOn429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "t", "url": "https://example.org", "content": "c"},
			},
		})
	}))
	defer server.Close()

	tv := newTavilyAgainst(server, "tvly-key")
	docs, err := tv.Search(context.Background(), "q", 3)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, docs, 1)
}

func TestTavilySearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tv := newTavilyAgainst(server, "tvly-key")
	_, err := tv.Search(context.Background(), "q", 3)
	assert.Error(t, err)
}
