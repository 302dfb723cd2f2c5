package app

import (
	"regexp"
	"strings"
)

var (
	tldSuffix   = regexp.MustCompile(`\.(com|org|net|io|co|us|ca|app|ai|dev)$`)
	nonWordRuns = regexp.MustCompile(`[^\w\s]+`)
)

// ExpandQuery turns one raw query into the ordered set of search terms the
// orchestrator will run. The verbatim query always comes first; a cleaned
// variant (lowercased, TLD suffix stripped, punctuation collapsed) is added
// when it differs from the lowercased original, followed by "<cleaned>
// company" and "<cleaned> business". Duplicates are dropped, first-seen
// order kept.
func ExpandQuery(query string) []string {
	terms := []string{query}

	cleaned := strings.ToLower(query)
	cleaned = tldSuffix.ReplaceAllString(cleaned, "")
	cleaned = nonWordRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned != strings.ToLower(query) {
		terms = append(terms, cleaned)
	}
	terms = append(terms, cleaned+" company", cleaned+" business")

	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
