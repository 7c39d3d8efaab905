// Package arxiv provides a client for the arXiv Atom query API.
//
// The client returns raw source records rather than finished domain papers:
// the search engine layer owns scoring, enrichment, and affiliation
// derivation, and needs access to source-native fields such as the free-text
// comment.
//
// API documentation: https://info.arxiv.org/help/api/user-manual.html
package arxiv

import (
	"encoding/xml"
	"time"
)

// Feed represents the Atom XML response from the arXiv API.
type Feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	StartIndex   int      `xml:"startIndex"`
	ItemsPerPage int      `xml:"itemsPerPage"`
	Entries      []Entry  `xml:"entry"`
}

// Entry represents a single arXiv paper in the Atom feed.
type Entry struct {
	ID        string        `xml:"id"` // "http://arxiv.org/abs/2301.12345v1"
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"` // abstract
	Published string        `xml:"published"`
	Updated   string        `xml:"updated"`
	Authors   []EntryAuthor `xml:"author"`
	Links     []Link        `xml:"link"`
	Comment   string        `xml:"comment"`
}

// EntryAuthor represents a paper author in the arXiv Atom feed.
type EntryAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

// Link represents a link element in the Atom feed.
type Link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Result is one raw search result, normalized from an Atom entry but not yet
// turned into a domain paper.
type Result struct {
	// EntryURL is the canonical abstract page, e.g.
	// "http://arxiv.org/abs/2301.12345v1". Doubles as the source-native
	// identifier carrier.
	EntryURL string

	// Title is the paper title with whitespace collapsed.
	Title string

	// Summary is the abstract with whitespace collapsed.
	Summary string

	// Published is the submission timestamp. Nil when missing or malformed.
	Published *time.Time

	// Authors is the source-ordered author list; affiliations are present
	// only for the minority of papers that report them.
	Authors []Author

	// PDFURL is the direct PDF link.
	PDFURL string

	// Comment is the free-text author comment, often carrying page counts,
	// venue notes, and occasionally contact email addresses.
	Comment string
}

// Author is one author on a raw result.
type Author struct {
	Name        string
	Affiliation string
}
