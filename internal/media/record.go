package media

import "strings"

// Record is the canonical stored representation of one media item, keyed by
// the catalog-assigned id. Zero values mean "not yet known"; merges only move
// fields from unset to set or replace a set value with a fresher one, never
// back to unset.
type Record struct {
	ID               int64
	Kind             Kind
	Title            string
	OriginalTitle    string
	Overview         string
	PosterRef        string
	ReleaseYear      int
	OriginalLanguage string
	Genres           []string
	Popularity       float64
	VoteAverage      float64
	VoteCount        int64
	CriticRating     float64
	CriticSummary    string
	Budget           int64
	BoxOffice        int64
}

// HasCriticSummary reports whether enrichment already produced a review
// summary for this record.
func (r Record) HasCriticSummary() bool {
	return strings.TrimSpace(r.CriticSummary) != ""
}

// Merge overlays incoming onto r and returns the result. Set fields in
// incoming win; absent fields in incoming keep r's value. The id and kind
// never change once assigned. Merging is commutative over disjoint field
// sets, which is what makes concurrent enrichment of the same id safe.
func (r Record) Merge(incoming Record) Record {
	merged := r
	if merged.ID == 0 {
		merged.ID = incoming.ID
	}
	if merged.Kind == KindUnknown {
		merged.Kind = incoming.Kind
	}
	if strings.TrimSpace(incoming.Title) != "" {
		merged.Title = incoming.Title
	}
	if strings.TrimSpace(incoming.OriginalTitle) != "" {
		merged.OriginalTitle = incoming.OriginalTitle
	}
	if strings.TrimSpace(incoming.Overview) != "" {
		merged.Overview = incoming.Overview
	}
	if strings.TrimSpace(incoming.PosterRef) != "" {
		merged.PosterRef = incoming.PosterRef
	}
	if incoming.ReleaseYear > 0 {
		merged.ReleaseYear = incoming.ReleaseYear
	}
	if strings.TrimSpace(incoming.OriginalLanguage) != "" {
		merged.OriginalLanguage = incoming.OriginalLanguage
	}
	if len(incoming.Genres) > 0 {
		merged.Genres = append([]string(nil), incoming.Genres...)
	}
	if incoming.Popularity > 0 {
		merged.Popularity = incoming.Popularity
	}
	if incoming.VoteAverage > 0 {
		merged.VoteAverage = incoming.VoteAverage
	}
	if incoming.VoteCount > 0 {
		merged.VoteCount = incoming.VoteCount
	}
	if incoming.CriticRating > 0 {
		merged.CriticRating = incoming.CriticRating
	}
	if strings.TrimSpace(incoming.CriticSummary) != "" {
		merged.CriticSummary = incoming.CriticSummary
	}
	if incoming.Budget > 0 {
		merged.Budget = incoming.Budget
	}
	if incoming.BoxOffice > 0 {
		merged.BoxOffice = incoming.BoxOffice
	}
	return merged
}

// GenreSet returns the record's genres as a lowercase lookup set.
func (r Record) GenreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Genres))
	for _, genre := range r.Genres {
		genre = strings.ToLower(strings.TrimSpace(genre))
		if genre != "" {
			set[genre] = struct{}{}
		}
	}
	return set
}
