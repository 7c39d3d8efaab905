package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxAffiliations caps the number of affiliations attached to a paper.
const MaxAffiliations = 3

// SourceType identifies a bibliographic data source.
type SourceType string

// Known source types. Only arXiv has a registered engine today; the others
// are named so callers can discover them, and resolve to an
// UnsupportedSourceError until an engine exists.
const (
	SourceTypeArXiv           SourceType = "arXiv"
	SourceTypePubMed          SourceType = "PubMed"
	SourceTypeIEEE            SourceType = "IEEE"
	SourceTypeGoogleScholar   SourceType = "Google Scholar"
	SourceTypeSemanticScholar SourceType = "Semantic Scholar"
)

// Author represents a paper author with an optional affiliation.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

// String returns a formatted string representation of the author.
func (a Author) String() string {
	if a.Affiliation == "" {
		return a.Name
	}

	var sb strings.Builder
	sb.WriteString(a.Name)
	sb.WriteString(" (")
	sb.WriteString(a.Affiliation)
	sb.WriteString(")")
	return sb.String()
}

// Paper represents one retrieved publication. Papers are value objects:
// each search call constructs a fresh set and never mutates them afterwards.
type Paper struct {
	// ID is a process-local identifier assigned at construction time.
	ID uuid.UUID

	// Title is the paper title as reported by the primary source.
	Title string

	// Authors is the source-provided author list, in source order.
	Authors []Author

	// Abstract is the paper abstract or summary text.
	Abstract string

	// PublishedDate is the source-provided publication timestamp.
	// Nil when the source omits it.
	PublishedDate *time.Time

	// URL is the canonical landing page for the paper.
	URL string

	// Source names the primary backend the paper came from.
	Source SourceType

	// PDFURL is the direct PDF link, empty when unavailable.
	PDFURL string

	// CitationCount is the citation count reported by the enrichment source.
	// Defaults to 0 when enrichment was unavailable; CitationSource
	// distinguishes a confirmed zero from an unknown count.
	CitationCount int

	// CitationSource names the enrichment source that provided
	// CitationCount. Empty when enrichment failed or found nothing.
	CitationSource SourceType

	// RelevanceScore is a positional-decay proxy for query-match quality,
	// higher is more relevant. Its meaning depends on the sort method that
	// produced the result list.
	RelevanceScore float64

	// Affiliations holds up to MaxAffiliations unique institution names
	// derived from the primary source and the enrichment source.
	Affiliations []string
}

// AuthorNames returns the author names in source order.
func (p *Paper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// CitationsKnown reports whether CitationCount was confirmed by an
// enrichment source, as opposed to the degraded default of 0.
func (p *Paper) CitationsKnown() bool {
	return p.CitationSource != ""
}

// SortMethod names a result ordering policy.
type SortMethod string

// Recognized sort methods.
const (
	// SortRelevance ranks by the primary source's native relevance ordering.
	SortRelevance SortMethod = "relevance"

	// SortSubmittedDate ranks by most recent submission first.
	SortSubmittedDate SortMethod = "submittedDate"

	// SortLastUpdatedDate ranks by most recent update first.
	SortLastUpdatedDate SortMethod = "lastUpdatedDate"

	// SortCitations ranks by descending citation count. Not a native sort
	// of any primary source; computed locally after enrichment.
	SortCitations SortMethod = "citations"
)

// ValidSortMethod reports whether s is a recognized sort method.
func ValidSortMethod(s SortMethod) bool {
	switch s {
	case SortRelevance, SortSubmittedDate, SortLastUpdatedDate, SortCitations:
		return true
	}
	return false
}

// RankingCriteria documents, for one search call, the policy that produced
// its paper list. It is constructed exactly once per call, describes the
// search already performed, and never controls it.
type RankingCriteria struct {
	// Source is the backend the search ran against.
	Source SourceType

	// SortMethod is the effective sort key applied to the results.
	SortMethod SortMethod

	// MaxResults is the requested result cap.
	MaxResults int

	// FiltersApplied lists human-readable descriptions of the filters
	// and ordering steps applied, in order.
	FiltersApplied []string

	// Description summarizes the ranking algorithm and its known
	// limitations in plain language.
	Description string
}
