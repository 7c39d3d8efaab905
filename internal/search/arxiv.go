package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/enrichment"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
)

// enrichWorkers bounds concurrent enrichment lookups per search call. The
// enricher's shared limiter still caps the aggregate request rate across
// calls.
const enrichWorkers = 4

// ArxivEngine searches arXiv and enriches results with citation counts and
// affiliations from a secondary source.
type ArxivEngine struct {
	client   *arxiv.Client
	enricher enrichment.Enricher
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

var _ Engine = (*ArxivEngine)(nil)

// NewArxivEngine creates an engine around the given arXiv client and
// enricher. metrics may be nil.
func NewArxivEngine(client *arxiv.Client, enricher enrichment.Enricher, metrics *observability.Metrics, logger zerolog.Logger) *ArxivEngine {
	return &ArxivEngine{
		client:   client,
		enricher: enricher,
		metrics:  metrics,
		logger:   logger.With().Str("engine", string(domain.SourceTypeArXiv)).Logger(),
	}
}

// Source identifies the primary source this engine queries.
func (e *ArxivEngine) Source() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Search runs the full pipeline: query arXiv with the source-native ordering,
// enrich every result, re-sort locally when the sort key is citation count,
// truncate, and assign positional relevance scores over the final order.
func (e *ArxivEngine) Search(ctx context.Context, query string, maxResults int, sortBy domain.SortMethod) ([]domain.Paper, domain.RankingCriteria, error) {
	nativeSort, citationSort := nativeSortCriterion(sortBy)

	results, err := e.client.Search(ctx, arxiv.SearchParams{
		Query:      query,
		MaxResults: maxResults,
		SortBy:     nativeSort,
	})
	if err != nil {
		return nil, domain.RankingCriteria{}, domain.NewSearchBackendError(domain.SourceTypeArXiv, err)
	}

	e.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("primary source fetch completed")

	enrichments := e.enrichAll(ctx, results)

	papers := make([]domain.Paper, 0, len(results))
	for i := range results {
		papers = append(papers, buildPaper(&results[i], enrichments[i]))
	}

	// Citation ordering is not native to arXiv: the fetch used the API's
	// default ordering and the re-sort happens here, after enrichment.
	// Ties keep the fetch order.
	if citationSort {
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].CitationCount > papers[j].CitationCount
		})
	}

	// Truncate after sorting so a local re-sort selects the top papers
	// rather than the first fetched ones.
	if maxResults > 0 && len(papers) > maxResults {
		papers = papers[:maxResults]
	}

	assignRelevanceScores(papers, maxResults)

	return papers, e.buildCriteria(sortBy, maxResults, citationSort), nil
}

// enrichAll looks up every result concurrently with a bounded worker count,
// preserving result order. The enricher absorbs its own failures, so workers
// never error out.
func (e *ArxivEngine) enrichAll(ctx context.Context, results []arxiv.Result) []enrichment.Enrichment {
	enrichments := make([]enrichment.Enrichment, len(results))

	sem := make(chan struct{}, enrichWorkers)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			enrichments[i] = e.enricher.Enrich(ctx, results[i].EntryURL)
			if e.metrics != nil {
				e.metrics.RecordEnrichmentLookup(enrichments[i].Found)
			}
			paperLogger := observability.WithPaperContext(e.logger, results[i].Title, results[i].EntryURL)
			paperLogger.Debug().
				Bool("citations_found", enrichments[i].Found).
				Msg("enrichment lookup finished")
		}(i)
	}
	wg.Wait()

	return enrichments
}

// buildPaper converts one raw arXiv result and its enrichment into a domain
// paper.
func buildPaper(r *arxiv.Result, enr enrichment.Enrichment) domain.Paper {
	authors := make([]domain.Author, 0, len(r.Authors))
	var authorAffiliations []string
	for _, a := range r.Authors {
		authors = append(authors, domain.Author{Name: a.Name, Affiliation: a.Affiliation})
		if a.Affiliation != "" {
			authorAffiliations = append(authorAffiliations, a.Affiliation)
		}
	}

	paper := domain.Paper{
		ID:            uuid.New(),
		Title:         r.Title,
		Authors:       authors,
		Abstract:      r.Summary,
		PublishedDate: r.Published,
		URL:           r.EntryURL,
		Source:        domain.SourceTypeArXiv,
		PDFURL:        r.PDFURL,
		Affiliations: mergeAffiliations(
			affiliationsFromText(r.Comment),
			authorAffiliations,
			enr.Affiliations,
		),
	}

	if enr.Found {
		paper.CitationCount = enr.CitationCount
		paper.CitationSource = enr.Source
	}

	return paper
}

// buildCriteria documents the ranking policy applied by this search call.
func (e *ArxivEngine) buildCriteria(sortBy domain.SortMethod, maxResults int, citationSort bool) domain.RankingCriteria {
	filters := []string{"free-text query matched across all arXiv fields"}
	description := fmt.Sprintf(
		"Results ranked by arXiv's native %s ordering, capped at %d results. Relevance scores are positional approximations: earlier results score higher.",
		sortBy, maxResults)

	if citationSort {
		filters = append(filters,
			"fetched in arXiv's default relevance order",
			"re-sorted locally by citation count, descending",
			fmt.Sprintf("truncated to top %d after sorting", maxResults),
		)
		description = fmt.Sprintf(
			"Results fetched in arXiv's default relevance order, re-sorted by citation count from %s, capped at %d results. Papers the enrichment source does not index count as zero citations.",
			domain.SourceTypeSemanticScholar, maxResults)
	} else {
		filters = append(filters, fmt.Sprintf("native sort: %s, descending", sortBy))
	}

	return domain.RankingCriteria{
		Source:         domain.SourceTypeArXiv,
		SortMethod:     sortBy,
		MaxResults:     maxResults,
		FiltersApplied: filters,
		Description:    description,
	}
}

// nativeSortCriterion maps a sort method to arXiv's native sort parameter.
// Citation ordering has no native equivalent: the fetch uses the API default
// and the second return value requests a local re-sort.
func nativeSortCriterion(sortBy domain.SortMethod) (arxiv.SortCriterion, bool) {
	switch sortBy {
	case domain.SortSubmittedDate:
		return arxiv.SortBySubmittedDate, false
	case domain.SortLastUpdatedDate:
		return arxiv.SortByLastUpdatedDate, false
	case domain.SortCitations:
		return "", true
	default:
		return arxiv.SortByRelevance, false
	}
}

// assignRelevanceScores sets positional decay scores over the final order:
// 1.0 for the first paper, decreasing linearly by 1/maxResults. Scores are
// strictly decreasing with position whenever maxResults >= len(papers).
func assignRelevanceScores(papers []domain.Paper, maxResults int) {
	if maxResults <= 0 {
		for i := range papers {
			papers[i].RelevanceScore = 0
		}
		return
	}
	for i := range papers {
		papers[i].RelevanceScore = 1.0 - float64(i)/float64(maxResults)
	}
}
