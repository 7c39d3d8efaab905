package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
)

const (
	// DefaultSource is the source searched when the request names none.
	DefaultSource = domain.SourceTypeArXiv

	// DefaultMaxResults is the result cap applied when neither the request
	// nor the service configuration sets one.
	DefaultMaxResults = 20

	// MaxResultsLimit is the upper bound on requested results when the
	// service configuration sets none.
	MaxResultsLimit = 100
)

// Config holds the orchestration defaults and limits applied to incoming
// requests. Zero-valued fields fall back to the package defaults.
type Config struct {
	// DefaultMaxResults is the result cap applied when a request sets none.
	DefaultMaxResults int

	// MaxResultsLimit is the hard upper bound on requested results.
	MaxResultsLimit int

	// DefaultSort is the sort method applied when a request sets none.
	DefaultSort domain.SortMethod
}

func (c Config) withFallbacks() Config {
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = DefaultMaxResults
	}
	if c.MaxResultsLimit <= 0 {
		c.MaxResultsLimit = MaxResultsLimit
	}
	if c.DefaultSort == "" {
		c.DefaultSort = domain.SortRelevance
	}
	return c
}

// Request is one paper search call. Zero-valued fields take the service
// defaults.
type Request struct {
	// Query is the free-text search query. Required.
	Query string

	// Source selects the primary backend. Empty means DefaultSource.
	Source domain.SourceType

	// MaxResults caps the result list. Zero means the configured default.
	MaxResults int

	// SortBy selects the ordering. Empty means the configured default sort.
	SortBy domain.SortMethod
}

// Result is the outcome of one search: the ranked papers and the criteria
// record documenting how the ranking was produced.
type Result struct {
	Papers   []domain.Paper
	Criteria domain.RankingCriteria
}

// Service orchestrates paper searches: it applies defaults, validates the
// request, resolves the engine, and records logs and metrics around the call.
type Service struct {
	registry *Registry
	cfg      Config
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewService creates a search service. metrics may be nil.
func NewService(registry *Registry, cfg Config, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		cfg:      cfg.withFallbacks(),
		metrics:  metrics,
		logger:   logger.With().Str("component", "search_service").Logger(),
	}
}

// Search runs one paper search. An unsupported source or invalid input is
// the caller's error; a primary-source failure surfaces as a
// *domain.SearchBackendError. Enrichment problems never fail the call.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	req = s.applyDefaults(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := observability.WithSearchContext(s.logger, requestID, req.Query, string(req.Source))
	logger.Info().
		Int("max_results", req.MaxResults).
		Str("sort", string(req.SortBy)).
		Msg("search started")

	if s.metrics != nil {
		s.metrics.RecordSearchStarted(string(req.Source), string(req.SortBy))
	}
	start := time.Now()

	engine, err := s.registry.Get(req.Source)
	if err != nil {
		logger.Warn().Err(err).Msg("no engine for requested source")
		if s.metrics != nil {
			s.metrics.RecordSearchFailed(string(req.Source), errorType(err), time.Since(start).Seconds())
		}
		return nil, err
	}

	papers, criteria, err := engine.Search(ctx, req.Query, req.MaxResults, req.SortBy)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("search failed")
		if s.metrics != nil {
			s.metrics.RecordSearchFailed(string(req.Source), errorType(err), elapsed.Seconds())
			s.metrics.RecordSourceRequestFailed(string(req.Source))
		}
		return nil, err
	}

	logger.Info().
		Int("papers", len(papers)).
		Dur("elapsed", elapsed).
		Msg("search completed")
	if s.metrics != nil {
		s.metrics.RecordSearchCompleted(string(req.Source), string(req.SortBy), len(papers), elapsed.Seconds())
	}

	return &Result{Papers: papers, Criteria: criteria}, nil
}

// Sources returns the source types with a registered engine.
func (s *Service) Sources() []domain.SourceType {
	return s.registry.Sources()
}

// applyDefaults fills zero-valued request fields with the configured defaults.
func (s *Service) applyDefaults(req Request) Request {
	if req.Source == "" {
		req.Source = DefaultSource
	}
	if req.MaxResults == 0 {
		req.MaxResults = s.cfg.DefaultMaxResults
	}
	if req.SortBy == "" {
		req.SortBy = s.cfg.DefaultSort
	}
	return req
}

// validate rejects requests that cannot be executed.
func (s *Service) validate(req Request) error {
	if req.Query == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if req.MaxResults < 0 {
		return fmt.Errorf("%w: max results must be positive", domain.ErrInvalidInput)
	}
	if req.MaxResults > s.cfg.MaxResultsLimit {
		return fmt.Errorf("%w: max results exceeds limit of %d", domain.ErrInvalidInput, s.cfg.MaxResultsLimit)
	}
	if !domain.ValidSortMethod(req.SortBy) {
		return fmt.Errorf("%w: unknown sort method %q", domain.ErrInvalidInput, string(req.SortBy))
	}
	return nil
}

// errorType maps an error to a coarse metrics label.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource):
		return "unsupported_source"
	case errors.Is(err, domain.ErrSearchBackend):
		return "backend"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "internal"
	}
}
