package navigator

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/igloo-cli/igloo/internal/portal"
)

// Below this Jaro-Winkler similarity a module name is not considered a match.
const minSimilarity = 0.7

// MatchModule picks the module a free-text query most likely refers to.
// A case-insensitive substring hit wins outright, otherwise the most
// similar name is used.
func MatchModule(modules []portal.Module, query string) (portal.Module, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return portal.Module{}, fmt.Errorf("%w: empty query", ErrNoModuleMatch)
	}

	for _, m := range modules {
		if strings.Contains(strings.ToLower(m.Name), q) {
			return m, nil
		}
	}

	var (
		best           portal.Module
		bestSimilarity float64
	)
	for _, m := range modules {
		similarity := matchr.JaroWinkler(q, strings.ToLower(m.Name), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = m
		}
	}
	if bestSimilarity < minSimilarity {
		return portal.Module{}, fmt.Errorf("%w %q", ErrNoModuleMatch, query)
	}
	return best, nil
}
