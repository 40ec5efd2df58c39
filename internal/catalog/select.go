package catalog

import (
	"strings"

	"marquee/internal/media"
)

// selectBest picks the single most credible search result for a query.
// Exact case-insensitive title equality (after symbol normalization) beats
// any substring match; within a tier the higher popularity wins.
func selectBest(query string, results []searchResult) *Candidate {
	if len(results) == 0 {
		return nil
	}
	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryNormalized := media.NormalizeTitle(query)

	var best *searchResult
	bestExact := false
	for idx := range results {
		result := &results[idx]
		title := result.title()
		if title == "" {
			continue
		}
		titleLower := strings.ToLower(title)
		exact := titleLower == queryLower || media.NormalizeTitle(title) == queryNormalized
		if !exact && !strings.Contains(titleLower, queryLower) {
			continue
		}
		switch {
		case best == nil:
			best, bestExact = result, exact
		case exact && !bestExact:
			best, bestExact = result, exact
		case exact == bestExact && result.Popularity > best.Popularity:
			best = result
		}
	}

	// No titles overlapped the query at all; fall back to the most popular
	// result rather than returning nothing for a misspelled query.
	if best == nil {
		for idx := range results {
			result := &results[idx]
			if result.title() == "" {
				continue
			}
			if best == nil || result.Popularity > best.Popularity {
				best = result
			}
		}
	}
	if best == nil {
		return nil
	}

	return &Candidate{
		ID:          best.ID,
		Title:       strings.TrimSpace(best.title()),
		Kind:        best.kind(),
		Year:        best.year(),
		Popularity:  best.Popularity,
		VoteAverage: best.VoteAverage,
		VoteCount:   best.VoteCount,
	}
}
