package media

import "strings"

// Profile captures the user preferences the scorer ranks against. It is
// assembled by callers (search endpoints, recommendation generators) and
// never persisted by this core.
type Profile struct {
	PreferredLanguages []string
	PreferredGenres    []string
	// RecentHighRatings counts the user's recent positive ratings that are
	// relevant to the current request. Passed through to the scorer as the
	// personalization signal.
	RecentHighRatings int
	MinYear           int
	MaxYear           int
	MinCriticRating   float64
}

// PrefersLanguage reports whether language is one of the profile's preferred
// languages, compared case-insensitively.
func (p Profile) PrefersLanguage(language string) bool {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return false
	}
	for _, preferred := range p.PreferredLanguages {
		if strings.ToLower(strings.TrimSpace(preferred)) == language {
			return true
		}
	}
	return false
}

// GenreOverlap counts how many of the record's genres appear in the
// profile's preferred genres.
func (p Profile) GenreOverlap(record Record) int {
	if len(p.PreferredGenres) == 0 {
		return 0
	}
	recordGenres := record.GenreSet()
	overlap := 0
	for _, preferred := range p.PreferredGenres {
		preferred = strings.ToLower(strings.TrimSpace(preferred))
		if preferred == "" {
			continue
		}
		if _, ok := recordGenres[preferred]; ok {
			overlap++
		}
	}
	return overlap
}

// Admits reports whether record satisfies the profile's hard constraints:
// the release-year window and the minimum critic rating. Zero-valued
// constraints admit everything. A record with no release year or no critic
// rating is not excluded by the corresponding constraint, because absence of
// data is not a mismatch.
func (p Profile) Admits(record Record) bool {
	if record.ReleaseYear > 0 {
		if p.MinYear > 0 && record.ReleaseYear < p.MinYear {
			return false
		}
		if p.MaxYear > 0 && record.ReleaseYear > p.MaxYear {
			return false
		}
	}
	if p.MinCriticRating > 0 && record.CriticRating > 0 && record.CriticRating < p.MinCriticRating {
		return false
	}
	return true
}

// Reason explains one scoring factor that contributed to a match percent.
type Reason struct {
	Factor      string
	Score       int
	Description string
}

// MatchResult pairs a resolved record with its bounded match percent and the
// ordered factor breakdown. Constructed fresh per request, never stored.
type MatchResult struct {
	Record       Record
	MatchPercent int
	Reasons      []Reason
}
