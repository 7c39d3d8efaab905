// Package semanticscholar provides a narrow client for the Semantic Scholar
// Graph API, used to enrich papers found elsewhere with citation counts and
// author affiliations.
//
// API documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

import "encoding/json"

// PaperResponse represents the paper lookup response, restricted to the
// fields this service requests.
type PaperResponse struct {
	// PaperID is the Semantic Scholar unique identifier for the paper.
	PaperID string `json:"paperId"`

	// CitationCount is the number of citations this paper has received.
	CitationCount int `json:"citationCount"`

	// Authors is the list of paper authors with nested affiliations.
	Authors []Author `json:"authors"`
}

// Author represents a paper author in the lookup response.
type Author struct {
	// Name is the author's name.
	Name string `json:"name"`

	// Affiliations lists the author's affiliations. The API serves either
	// plain strings or {"name": ...} objects depending on data vintage, so
	// the element type normalizes both.
	Affiliations []Affiliation `json:"affiliations"`
}

// Affiliation is an institution name that unmarshals from either a JSON
// string or an object with a "name" field.
type Affiliation struct {
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Affiliation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	return nil
}

// ErrorResponse represents an error response from the Semantic Scholar API.
type ErrorResponse struct {
	// Error is the error message from the API.
	Error string `json:"error,omitempty"`

	// Message is an alternative error message field.
	Message string `json:"message,omitempty"`
}
