package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/enrichment/semanticscholar"
	"github.com/helixir/paper-search-service/internal/papersources"
)

func newTestEnricher(t *testing.T, handler http.HandlerFunc) *SemanticScholarEnricher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		RateLimit:  1000,
		BurstSize:  100,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	client := semanticscholar.NewClient(semanticscholar.Config{BaseURL: server.URL}, httpClient)
	return NewSemanticScholarEnricher(client, 1000, zerolog.Nop())
}

func TestNormalizeArxivID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"entry URL with version", "http://arxiv.org/abs/2301.12345v2", "2301.12345"},
		{"entry URL without version", "http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https URL with trailing slash", "https://arxiv.org/abs/2301.12345v1/", "2301.12345"},
		{"bare ID", "2301.12345", "2301.12345"},
		{"bare ID with version", "2301.12345v10", "2301.12345"},
		{"old-style ID", "http://arxiv.org/abs/cond-mat/0001001v1", "0001001"},
		{"whitespace", "  2301.12345  ", "2301.12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArxivID(tt.in))
		})
	}
}

func TestSemanticScholarEnricher_Enrich(t *testing.T) {
	t.Run("found paper yields citation count and affiliations", func(t *testing.T) {
		var gotPath string
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{
				"paperId": "abc",
				"citationCount": 17,
				"authors": [
					{"name": "Jane Doe", "affiliations": ["Stanford University"]},
					{"name": "John Smith", "affiliations": ["Stanford University", "MIT"]}
				]
			}`))
		})

		enr := enricher.Enrich(context.Background(), "http://arxiv.org/abs/2301.12345v2")

		assert.Equal(t, "/paper/arXiv:2301.12345", gotPath, "version suffix is stripped before lookup")
		assert.True(t, enr.Found)
		assert.Equal(t, 17, enr.CitationCount)
		assert.Equal(t, []string{"Stanford University", "MIT"}, enr.Affiliations)
		assert.Equal(t, domain.SourceTypeSemanticScholar, enr.Source)
	})

	t.Run("confirmed zero citations is still found", func(t *testing.T) {
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"paperId": "abc", "citationCount": 0, "authors": []}`))
		})

		enr := enricher.Enrich(context.Background(), "2400.00001")

		assert.True(t, enr.Found)
		assert.Equal(t, 0, enr.CitationCount)
	})

	t.Run("not found degrades to zero enrichment", func(t *testing.T) {
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "Paper not found"}`))
		})

		enr := enricher.Enrich(context.Background(), "2301.12345")

		assert.False(t, enr.Found)
		assert.Zero(t, enr.CitationCount)
		assert.Empty(t, enr.Affiliations)
		assert.Empty(t, enr.Source)
	})

	t.Run("backend error degrades to zero enrichment", func(t *testing.T) {
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "boom"}`))
		})

		enr := enricher.Enrich(context.Background(), "2301.12345")
		assert.False(t, enr.Found)
	})

	t.Run("empty identifier skips the lookup", func(t *testing.T) {
		called := false
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		enr := enricher.Enrich(context.Background(), "")
		assert.False(t, enr.Found)
		assert.False(t, called)
	})

	t.Run("canceled context degrades without calling the API", func(t *testing.T) {
		enricher := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"paperId": "abc", "citationCount": 1, "authors": []}`))
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		enr := enricher.Enrich(ctx, "2301.12345")
		assert.False(t, enr.Found)
	})
}

func TestNewSemanticScholarEnricher_DefaultRate(t *testing.T) {
	client := semanticscholar.NewClient(semanticscholar.Config{}, nil)
	enricher := NewSemanticScholarEnricher(client, 0, zerolog.Nop())
	require.NotNil(t, enricher)
	require.NotNil(t, enricher.limiter)
}
