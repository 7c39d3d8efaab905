package search

import (
	"regexp"
	"strings"

	"github.com/helixir/paper-search-service/internal/domain"
)

// emailRegex matches email addresses and captures the domain part.
var emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

// genericLabels are domain labels that never name an institution on their own.
var genericLabels = map[string]struct{}{
	"edu": {}, "ac": {}, "co": {}, "com": {},
	"org": {}, "net": {}, "gov": {}, "mail": {},
}

// freemailProviders are consumer mail hosts that carry no affiliation signal.
var freemailProviders = map[string]struct{}{
	"gmail": {}, "googlemail": {}, "yahoo": {}, "hotmail": {},
	"outlook": {}, "protonmail": {}, "icloud": {}, "qq": {}, "163": {},
}

// affiliationsFromText extracts institution names from email addresses found
// in free text, such as an arXiv comment field. Results are deduplicated in
// first-seen order. The heuristic is lossy: consumer mail providers are
// skipped and domain labels are title-cased as-is.
func affiliationsFromText(text string) []string {
	matches := emailRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var affiliations []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		org := organizationFromDomain(m[1])
		if org == "" {
			continue
		}
		if _, ok := seen[org]; ok {
			continue
		}
		seen[org] = struct{}{}
		affiliations = append(affiliations, org)
	}
	return affiliations
}

// organizationFromDomain derives an institution name from a mail domain.
// "cs.stanford.edu" becomes "Stanford"; consumer providers yield "".
func organizationFromDomain(host string) string {
	labels := strings.Split(strings.ToLower(strings.TrimSpace(host)), ".")
	if len(labels) < 2 {
		return ""
	}

	// Drop the TLD, then walk back past generic second-level labels
	// ("ac" in ox.ac.uk, "edu" in cs.stanford.edu).
	labels = labels[:len(labels)-1]
	for i := len(labels) - 1; i >= 0; i-- {
		label := labels[i]
		if _, ok := genericLabels[label]; ok {
			continue
		}
		if _, ok := freemailProviders[label]; ok {
			return ""
		}
		return titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(label))
	}
	return ""
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// mergeAffiliations combines affiliation lists in priority order, dropping
// empties and duplicates, and caps the result at domain.MaxAffiliations.
func mergeAffiliations(lists ...[]string) []string {
	var merged []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, aff := range list {
			aff = strings.TrimSpace(aff)
			if aff == "" {
				continue
			}
			if _, ok := seen[aff]; ok {
				continue
			}
			seen[aff] = struct{}{}
			merged = append(merged, aff)
			if len(merged) == domain.MaxAffiliations {
				return merged
			}
		}
	}
	return merged
}
