// Package match implements the lexical half of the hybrid pipeline: exact
// substring containment and fuzzy token-sort scoring over product text.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	// ResultThreshold is the minimum fuzzy score for result inclusion.
	ResultThreshold = 70
	// SuggestionThreshold is the minimum fuzzy score for suggestion
	// inclusion. Lower bar: suggestions are advisory, not results.
	SuggestionThreshold = 60
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions = 3
)

// Scorer computes fuzzy similarity between a query and candidate text.
// Stateless and safe for concurrent use.
type Scorer struct{}

// Score returns a similarity in [0,100] between query and text. The
// comparison sorts tokens first, so it is insensitive to word order and
// symmetric in its inputs. Deterministic, no side effects.
func (Scorer) Score(query, text string) int {
	q := normalize(query)
	c := normalize(text)
	if q == "" || c == "" {
		return 0
	}
	return fuzzy.TokenSortRatio(q, c)
}

// ContainsFold reports whether the lowercased, trimmed query occurs as a
// substring of name, ignoring case.
func ContainsFold(name, query string) bool {
	return strings.Contains(strings.ToLower(name), normalize(query))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
