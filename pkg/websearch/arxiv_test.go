package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuw136/paper-helper/pkg/store"
	"github.com/stretchr/testify/assert"
)

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/1234.5678v1</id>
    <title>Spectral Gaps of
  Expander Graphs</title>
    <summary>We prove lower bounds on the spectral gap of
  random regular graphs.</summary>
    <link href="http://arxiv.org/abs/1234.5678v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/1234.5678v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2345.6789v2</id>
    <title>Ramanujan Complexes</title>
    <summary>High dimensional expanders and their spectra.</summary>
    <link href="http://arxiv.org/pdf/2345.6789v2" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		assert.Equal(t, "relevance", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "2", r.URL.Query().Get("max_results"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	a := NewArxivWithClient(server.URL, server.Client())
	docs, err := a.Search(context.Background(), "spectral gap expander", 2)

	assert.NoError(t, err)
	assert.Equal(t, "all:spectral gap expander", gotQuery)
	if assert.Len(t, docs, 2) {
		assert.Equal(t, store.SourceArxiv, docs[0].Source)
		assert.Equal(t, "Spectral Gaps of Expander Graphs", docs[0].Title)
		assert.Equal(t, "We prove lower bounds on the spectral gap of random regular graphs.", docs[0].Content)
		assert.Equal(t, "http://arxiv.org/abs/1234.5678v1", docs[0].URL)

		// Entry without an alternate link falls back to the first link.
		assert.Equal(t, "http://arxiv.org/pdf/2345.6789v2", docs[1].URL)
	}
}

func TestArxivSearchLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	a := NewArxivWithClient(server.URL, server.Client())
	docs, err := a.Search(context.Background(), "q", 1)

	assert.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestArxivSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := NewArxivWithClient(server.URL, server.Client())
	_, err := a.Search(context.Background(), "q", 3)
	assert.Error(t, err)
}
