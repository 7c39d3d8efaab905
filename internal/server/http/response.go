package httpserver

import (
	"time"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/search"
)

// Search response types for JSON serialization.

type searchResponse struct {
	Papers     []paperResponse  `json:"papers"`
	Criteria   criteriaResponse `json:"ranking_criteria"`
	TotalCount int              `json:"total_count"`
}

type paperResponse struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Authors        []authorResponse `json:"authors,omitempty"`
	Abstract       string           `json:"abstract,omitempty"`
	PublishedDate  *time.Time       `json:"published_date,omitempty"`
	URL            string           `json:"url"`
	Source         string           `json:"source"`
	PdfURL         string           `json:"pdf_url,omitempty"`
	CitationCount  int              `json:"citation_count"`
	CitationSource string           `json:"citation_source,omitempty"`
	RelevanceScore float64          `json:"relevance_score"`
	Affiliations   []string         `json:"affiliations,omitempty"`
}

type authorResponse struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

type criteriaResponse struct {
	Source         string   `json:"source"`
	SortMethod     string   `json:"sort_method"`
	MaxResults     int      `json:"max_results"`
	FiltersApplied []string `json:"filters_applied"`
	Description    string   `json:"description"`
}

type listSourcesResponse struct {
	Sources []string `json:"sources"`
}

// Converter functions

func searchResultToResponse(result *search.Result) searchResponse {
	papers := make([]paperResponse, len(result.Papers))
	for i := range result.Papers {
		papers[i] = domainPaperToResponse(&result.Papers[i])
	}
	return searchResponse{
		Papers:     papers,
		Criteria:   domainCriteriaToResponse(result.Criteria),
		TotalCount: len(papers),
	}
}

func domainPaperToResponse(p *domain.Paper) paperResponse {
	authors := make([]authorResponse, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = authorResponse{
			Name:        a.Name,
			Affiliation: a.Affiliation,
		}
	}
	return paperResponse{
		ID:             p.ID.String(),
		Title:          p.Title,
		Authors:        authors,
		Abstract:       p.Abstract,
		PublishedDate:  p.PublishedDate,
		URL:            p.URL,
		Source:         string(p.Source),
		PdfURL:         p.PDFURL,
		CitationCount:  p.CitationCount,
		CitationSource: string(p.CitationSource),
		RelevanceScore: p.RelevanceScore,
		Affiliations:   p.Affiliations,
	}
}

func domainCriteriaToResponse(c domain.RankingCriteria) criteriaResponse {
	return criteriaResponse{
		Source:         string(c.Source),
		SortMethod:     string(c.SortMethod),
		MaxResults:     c.MaxResults,
		FiltersApplied: c.FiltersApplied,
		Description:    c.Description,
	}
}
