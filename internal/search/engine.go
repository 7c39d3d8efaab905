package search

import (
	"context"

	"github.com/helixir/paper-search-service/internal/domain"
)

// Engine searches one primary bibliographic source and returns enriched,
// ranked papers together with the criteria that produced the ranking.
type Engine interface {
	// Source identifies the primary source this engine queries.
	Source() domain.SourceType

	// Search runs a free-text query against the primary source. The returned
	// papers are fully enriched and ordered according to sortBy; the criteria
	// record describes the ordering actually applied.
	//
	// Failures of the primary source are fatal and returned as a
	// *domain.SearchBackendError. Enrichment failures are never fatal.
	Search(ctx context.Context, query string, maxResults int, sortBy domain.SortMethod) ([]domain.Paper, domain.RankingCriteria, error)
}
