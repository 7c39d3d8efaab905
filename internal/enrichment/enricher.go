// Package enrichment augments papers found on a primary source with citation
// counts and author affiliations from a secondary metadata API.
//
// The package deliberately never fails: a lookup that times out, errors, or
// finds nothing degrades to an empty Enrichment, and the search proceeds with
// primary-source data alone.
package enrichment

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/enrichment/semanticscholar"
	"github.com/helixir/paper-search-service/internal/papersources"
)

// DefaultCallRate is the default sustained rate of enrichment calls per
// second. Roughly one call per 100ms, the budget the secondary API tolerates
// without an API key.
const DefaultCallRate = 10.0

// versionSuffixRegex matches a trailing arXiv version marker such as "v2".
var versionSuffixRegex = regexp.MustCompile(`v\d+$`)

// Enrichment is the outcome of one lookup. The zero value means "nothing
// learned": citation count unknown, no affiliations.
type Enrichment struct {
	// CitationCount is the confirmed citation count. Meaningful only when
	// Found is true.
	CitationCount int

	// Found reports whether the enrichment source had a record for the
	// paper. False covers not-found, timeouts, and malformed responses
	// alike.
	Found bool

	// Affiliations is the deduplicated list of affiliation strings from the
	// record's nested author data, in first-seen order.
	Affiliations []string

	// Source names the enrichment backend. Empty when Found is false.
	Source domain.SourceType
}

// Enricher fetches citation/affiliation metadata for paper identifiers.
// Implementations must absorb all failures and return the zero Enrichment
// instead of an error.
type Enricher interface {
	// Enrich looks up the paper with the given source-native identifier.
	// The identifier may be a bare ID or a full entry URL; implementations
	// normalize it.
	Enrich(ctx context.Context, id string) Enrichment
}

// SemanticScholarEnricher enriches arXiv papers via the Semantic Scholar
// Graph API. Calls share a process-wide token bucket so concurrent searches
// stay within the secondary API's request budget.
type SemanticScholarEnricher struct {
	client  *semanticscholar.Client
	limiter *papersources.RateLimiter
	logger  zerolog.Logger
}

var _ Enricher = (*SemanticScholarEnricher)(nil)

// NewSemanticScholarEnricher creates an enricher around the given client.
// callRate throttles consecutive lookups; 0 uses DefaultCallRate.
func NewSemanticScholarEnricher(client *semanticscholar.Client, callRate float64, logger zerolog.Logger) *SemanticScholarEnricher {
	if callRate == 0 {
		callRate = DefaultCallRate
	}
	return &SemanticScholarEnricher{
		client:  client,
		limiter: papersources.NewRateLimiter(callRate, 1),
		logger:  logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich looks up the paper and returns whatever metadata was found. All
// failure modes degrade to the zero Enrichment; not-found is a normal
// outcome and logged at debug only.
func (e *SemanticScholarEnricher) Enrich(ctx context.Context, id string) Enrichment {
	arxivID := NormalizeArxivID(id)
	if arxivID == "" {
		return Enrichment{}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return Enrichment{}
	}

	paper, err := e.client.GetPaper(ctx, "arXiv:"+arxivID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Debug().Str("arxiv_id", arxivID).Msg("paper not indexed by enrichment source")
		} else {
			e.logger.Warn().Err(err).Str("arxiv_id", arxivID).Msg("enrichment lookup failed, degrading")
		}
		return Enrichment{}
	}

	return Enrichment{
		CitationCount: paper.CitationCount,
		Found:         true,
		Affiliations:  collectAffiliations(paper.Authors),
		Source:        domain.SourceTypeSemanticScholar,
	}
}

// NormalizeArxivID extracts a bare arXiv identifier from an ID or entry URL:
// the trailing path segment with any version suffix removed.
// "http://arxiv.org/abs/2301.12345v2" becomes "2301.12345".
func NormalizeArxivID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimRight(id, "/")
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		id = id[idx+1:]
	}
	return versionSuffixRegex.ReplaceAllString(id, "")
}

// collectAffiliations flattens nested author affiliations into a deduplicated
// list, preserving first-seen order.
func collectAffiliations(authors []semanticscholar.Author) []string {
	var affiliations []string
	seen := make(map[string]struct{})
	for _, author := range authors {
		for _, aff := range author.Affiliations {
			name := strings.TrimSpace(aff.Name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			affiliations = append(affiliations, name)
		}
	}
	return affiliations
}
