package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/search"
)

// searchQuery is the parsed and validated query string of a search request.
// The upper bound on MaxResults is enforced by the service against its
// configured limit.
type searchQuery struct {
	Query      string `validate:"required,min=1,max=1024"`
	Source     string `validate:"omitempty,max=64"`
	MaxResults int    `validate:"omitempty,min=1"`
	SortBy     string `validate:"omitempty,oneof=relevance submittedDate lastUpdatedDate citations"`
}

// searchPapers handles GET /api/v1/search.
//
// Query parameters: query (required), source, max_results, sort_by. Omitted
// parameters take the service defaults.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := searchQuery{
		Query:  strings.TrimSpace(params.Get("query")),
		Source: strings.TrimSpace(params.Get("source")),
		SortBy: strings.TrimSpace(params.Get("sort_by")),
	}

	if raw := params.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		q.MaxResults = n
	}

	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.service.Search(r.Context(), search.Request{
		Query:      q.Query,
		Source:     domain.SourceType(q.Source),
		MaxResults: q.MaxResults,
		SortBy:     domain.SortMethod(q.SortBy),
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResultToResponse(result))
}

// listSources handles GET /api/v1/sources.
func (s *Server) listSources(w http.ResponseWriter, _ *http.Request) {
	sources := s.service.Sources()
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = string(src)
	}
	writeJSON(w, http.StatusOK, listSourcesResponse{Sources: names})
}

// writeSearchError maps a search failure to an HTTP status. Unsupported
// sources and invalid input are the caller's fault; a backend failure is a
// bad gateway.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource), errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrSearchBackend):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// validationMessage renders the first validation failure as a client-facing
// message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	field := paramName(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return field + " is invalid"
	}
}

// paramName maps struct field names back to their query parameter names.
func paramName(field string) string {
	switch field {
	case "Query":
		return "query"
	case "Source":
		return "source"
	case "MaxResults":
		return "max_results"
	case "SortBy":
		return "sort_by"
	default:
		return field
	}
}
