package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/enrichment"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
)

// stubEnricher serves canned enrichments keyed by entry URL. Lookups run
// concurrently, so call recording is guarded.
type stubEnricher struct {
	mu    sync.Mutex
	byURL map[string]enrichment.Enrichment
	calls []string
}

func (s *stubEnricher) Enrich(_ context.Context, id string) enrichment.Enrichment {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()
	return s.byURL[id]
}

// feedEntry renders one Atom entry for the mock arXiv server.
func feedEntry(id, title, comment string) string {
	return fmt.Sprintf(`<entry>
		<id>%s</id>
		<title>%s</title>
		<summary>Abstract of %s.</summary>
		<published>2023-05-01T00:00:00Z</published>
		<author><name>Jane Doe</name></author>
		<link href="%s" rel="related" type="application/pdf" title="pdf"/>
		<arxiv:comment xmlns:arxiv="http://arxiv.org/schemas/atom">%s</arxiv:comment>
	</entry>`, id, title, title, strings.Replace(id, "/abs/", "/pdf/", 1), comment)
}

func atomFeed(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">` + strings.Join(entries, "\n") + `</feed>`
}

// newTestEngine spins up a mock arXiv API and returns an engine wired to it.
// The query values of the last request are captured into lastQuery.
func newTestEngine(t *testing.T, enricher enrichment.Enricher, feed string, lastQuery *url.Values) *ArxivEngine {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastQuery != nil {
			*lastQuery = r.URL.Query()
		}
		_, _ = w.Write([]byte(feed))
	}))
	t.Cleanup(server.Close)

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		RateLimit:  1000,
		BurstSize:  100,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	client := arxiv.NewWithHTTPClient(arxiv.Config{BaseURL: server.URL}, httpClient)
	return NewArxivEngine(client, enricher, nil, zerolog.Nop())
}

func TestArxivEngine_Source(t *testing.T) {
	engine := NewArxivEngine(nil, nil, nil, zerolog.Nop())
	assert.Equal(t, domain.SourceTypeArXiv, engine.Source())
}

func TestArxivEngine_Search(t *testing.T) {
	urlA := "http://arxiv.org/abs/2301.00001v1"
	urlB := "http://arxiv.org/abs/2301.00002v1"
	urlC := "http://arxiv.org/abs/2301.00003v1"
	feed := atomFeed(
		feedEntry(urlA, "Paper A", ""),
		feedEntry(urlB, "Paper B", ""),
		feedEntry(urlC, "Paper C", ""),
	)

	t.Run("relevance sort preserves source order with decaying scores", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{}}
		var gotQuery url.Values
		engine := newTestEngine(t, enricher, feed, &gotQuery)

		papers, criteria, err := engine.Search(context.Background(), "test", 10, domain.SortRelevance)
		require.NoError(t, err)
		require.Len(t, papers, 3)

		assert.Equal(t, "relevance", gotQuery.Get("sortBy"))

		assert.Equal(t, "Paper A", papers[0].Title)
		assert.Equal(t, "Paper B", papers[1].Title)
		assert.Equal(t, "Paper C", papers[2].Title)

		assert.InDelta(t, 1.0, papers[0].RelevanceScore, 1e-9)
		assert.InDelta(t, 0.9, papers[1].RelevanceScore, 1e-9)
		assert.InDelta(t, 0.8, papers[2].RelevanceScore, 1e-9)

		assert.Equal(t, domain.SourceTypeArXiv, criteria.Source)
		assert.Equal(t, domain.SortRelevance, criteria.SortMethod)
		assert.Equal(t, 10, criteria.MaxResults)
	})

	t.Run("native date sort is delegated to the API", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{}}
		var gotQuery url.Values
		engine := newTestEngine(t, enricher, feed, &gotQuery)

		_, criteria, err := engine.Search(context.Background(), "test", 10, domain.SortSubmittedDate)
		require.NoError(t, err)

		assert.Equal(t, "submittedDate", gotQuery.Get("sortBy"))
		assert.Equal(t, "descending", gotQuery.Get("sortOrder"))
		assert.Equal(t, domain.SortSubmittedDate, criteria.SortMethod)
	})

	t.Run("citation sort re-sorts locally after enrichment", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{
			urlA: {CitationCount: 5, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlB: {CitationCount: 50, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlC: {CitationCount: 20, Found: true, Source: domain.SourceTypeSemanticScholar},
		}}
		var gotQuery url.Values
		engine := newTestEngine(t, enricher, feed, &gotQuery)

		papers, criteria, err := engine.Search(context.Background(), "test", 10, domain.SortCitations)
		require.NoError(t, err)
		require.Len(t, papers, 3)

		assert.Empty(t, gotQuery.Get("sortBy"), "citation sort uses the API default ordering")

		assert.Equal(t, "Paper B", papers[0].Title)
		assert.Equal(t, "Paper C", papers[1].Title)
		assert.Equal(t, "Paper A", papers[2].Title)

		// Relevance decays over the re-sorted order, not the fetch order.
		assert.InDelta(t, 1.0, papers[0].RelevanceScore, 1e-9)
		assert.InDelta(t, 0.9, papers[1].RelevanceScore, 1e-9)
		assert.InDelta(t, 0.8, papers[2].RelevanceScore, 1e-9)

		assert.Equal(t, domain.SortCitations, criteria.SortMethod)
		assert.Contains(t, strings.Join(criteria.FiltersApplied, "; "), "citation count")
	})

	t.Run("citation sort truncates after sorting", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{
			urlA: {CitationCount: 1, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlB: {CitationCount: 2, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlC: {CitationCount: 99, Found: true, Source: domain.SourceTypeSemanticScholar},
		}}
		engine := newTestEngine(t, enricher, feed, nil)

		papers, _, err := engine.Search(context.Background(), "test", 2, domain.SortCitations)
		require.NoError(t, err)

		// The last-fetched paper has the most citations and must survive
		// the cut.
		require.Len(t, papers, 2)
		assert.Equal(t, "Paper C", papers[0].Title)
		assert.Equal(t, "Paper B", papers[1].Title)
	})

	t.Run("citation ties keep fetch order", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{
			urlA: {CitationCount: 7, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlB: {CitationCount: 7, Found: true, Source: domain.SourceTypeSemanticScholar},
			urlC: {CitationCount: 7, Found: true, Source: domain.SourceTypeSemanticScholar},
		}}
		engine := newTestEngine(t, enricher, feed, nil)

		papers, _, err := engine.Search(context.Background(), "test", 10, domain.SortCitations)
		require.NoError(t, err)
		require.Len(t, papers, 3)
		assert.Equal(t, "Paper A", papers[0].Title)
		assert.Equal(t, "Paper B", papers[1].Title)
		assert.Equal(t, "Paper C", papers[2].Title)
	})

	t.Run("enrichment miss leaves citation count unknown", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{
			urlA: {CitationCount: 3, Found: true, Source: domain.SourceTypeSemanticScholar},
		}}
		engine := newTestEngine(t, enricher, feed, nil)

		papers, _, err := engine.Search(context.Background(), "test", 10, domain.SortRelevance)
		require.NoError(t, err)
		require.Len(t, papers, 3)

		assert.True(t, papers[0].CitationsKnown())
		assert.Equal(t, 3, papers[0].CitationCount)

		assert.False(t, papers[1].CitationsKnown())
		assert.Zero(t, papers[1].CitationCount)
	})

	t.Run("every paper gets a unique id", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{}}
		engine := newTestEngine(t, enricher, feed, nil)

		papers, _, err := engine.Search(context.Background(), "test", 10, domain.SortRelevance)
		require.NoError(t, err)

		seen := make(map[string]struct{})
		for _, p := range papers {
			seen[p.ID.String()] = struct{}{}
		}
		assert.Len(t, seen, len(papers))
	})

	t.Run("affiliations merge comment emails with enrichment", func(t *testing.T) {
		withComment := atomFeed(feedEntry(urlA, "Paper A", "15 pages, contact jane@cs.stanford.edu"))
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{
			urlA: {
				CitationCount: 1,
				Found:         true,
				Affiliations:  []string{"MIT", "Stanford", "CMU"},
				Source:        domain.SourceTypeSemanticScholar,
			},
		}}
		engine := newTestEngine(t, enricher, withComment, nil)

		papers, _, err := engine.Search(context.Background(), "test", 10, domain.SortRelevance)
		require.NoError(t, err)
		require.Len(t, papers, 1)

		// Comment-derived affiliation comes first, then enrichment fills up
		// to the cap of three.
		assert.Equal(t, []string{"Stanford", "MIT", "CMU"}, papers[0].Affiliations)
	})

	t.Run("backend failure is fatal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("bad query"))
		}))
		t.Cleanup(server.Close)

		httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
			RateLimit: 1000, BurstSize: 100, MaxRetries: 1, RetryDelay: time.Millisecond,
		})
		client := arxiv.NewWithHTTPClient(arxiv.Config{BaseURL: server.URL}, httpClient)
		engine := NewArxivEngine(client, &stubEnricher{byURL: map[string]enrichment.Enrichment{}}, nil, zerolog.Nop())

		_, _, err := engine.Search(context.Background(), "(((", 10, domain.SortRelevance)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSearchBackend)

		var backendErr *domain.SearchBackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, domain.SourceTypeArXiv, backendErr.Source)
	})

	t.Run("empty result set", func(t *testing.T) {
		enricher := &stubEnricher{byURL: map[string]enrichment.Enrichment{}}
		engine := newTestEngine(t, enricher, atomFeed(), nil)

		papers, criteria, err := engine.Search(context.Background(), "no matches", 10, domain.SortRelevance)
		require.NoError(t, err)
		assert.Empty(t, papers)
		assert.Empty(t, enricher.calls)
		assert.Equal(t, domain.SortRelevance, criteria.SortMethod)
	})
}

func TestAssignRelevanceScores(t *testing.T) {
	t.Run("strictly decreasing within max results", func(t *testing.T) {
		papers := make([]domain.Paper, 5)
		assignRelevanceScores(papers, 5)

		for i := 1; i < len(papers); i++ {
			assert.Greater(t, papers[i-1].RelevanceScore, papers[i].RelevanceScore)
		}
		assert.InDelta(t, 1.0, papers[0].RelevanceScore, 1e-9)
		assert.InDelta(t, 0.2, papers[4].RelevanceScore, 1e-9)
	})

	t.Run("zero max results yields zero scores", func(t *testing.T) {
		papers := make([]domain.Paper, 2)
		assignRelevanceScores(papers, 0)
		assert.Zero(t, papers[0].RelevanceScore)
		assert.Zero(t, papers[1].RelevanceScore)
	})
}
