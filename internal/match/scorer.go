package match

import (
	"fmt"
	"time"

	"marquee/internal/config"
	"marquee/internal/media"
)

// Factor labels for reason entries, in the order bonuses are evaluated.
const (
	FactorLanguage        = "language"
	FactorRating          = "rating"
	FactorGenres          = "genres"
	FactorRecency         = "recency"
	FactorPopularity      = "popularity"
	FactorPersonalization = "personalization"
)

// Scorer computes match percentages from records and preference profiles.
type Scorer struct {
	cfg config.Scoring
	now func() time.Time
}

// NewScorer builds a scorer with the supplied tuning.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// WithClock overrides the scorer's notion of the current time (for tests).
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	if now != nil {
		s.now = now
	}
	return s
}

// Score computes the bounded match percent for record against profile.
// personalizationSignal is the caller-supplied count of relevant prior
// positive ratings. Same inputs always yield the same percent and the same
// reason sequence.
func (s *Scorer) Score(record media.Record, profile media.Profile, personalizationSignal int) media.MatchResult {
	cfg := s.cfg
	score := cfg.BaseScore
	reasons := make([]media.Reason, 0, 6)

	apply := func(factor string, bonus int, description string) {
		score += bonus
		reasons = append(reasons, media.Reason{Factor: factor, Score: bonus, Description: description})
	}

	if profile.PrefersLanguage(record.OriginalLanguage) {
		apply(FactorLanguage, cfg.LanguageBonus,
			fmt.Sprintf("in a preferred language (%s)", record.OriginalLanguage))
	}

	rating := record.CriticRating
	if rating == 0 {
		rating = record.VoteAverage
	}
	switch {
	case rating >= cfg.HighRatingThreshold:
		apply(FactorRating, cfg.HighRatingBonus,
			fmt.Sprintf("highly rated (%.1f)", rating))
	case rating >= cfg.GoodRatingThreshold:
		apply(FactorRating, cfg.GoodRatingBonus,
			fmt.Sprintf("well rated (%.1f)", rating))
	}

	if overlap := profile.GenreOverlap(record); overlap > 0 {
		bonus := overlap * cfg.GenreBonusPerMatch
		if bonus > cfg.GenreBonusCap {
			bonus = cfg.GenreBonusCap
		}
		apply(FactorGenres, bonus,
			fmt.Sprintf("matches %d preferred genre(s)", overlap))
	}

	if record.ReleaseYear > 0 {
		currentYear := s.now().Year()
		switch {
		case record.ReleaseYear >= currentYear-cfg.RecentYearWindow:
			apply(FactorRecency, cfg.RecentYearBonus,
				fmt.Sprintf("recent release (%d)", record.ReleaseYear))
		case record.ReleaseYear >= currentYear-cfg.ModernYearWindow:
			apply(FactorRecency, cfg.ModernYearBonus,
				fmt.Sprintf("modern release (%d)", record.ReleaseYear))
		}
	}

	switch {
	case record.VoteCount >= cfg.AcclaimedVoteCount:
		apply(FactorPopularity, cfg.AcclaimedVoteBonus,
			fmt.Sprintf("widely acclaimed (%d votes)", record.VoteCount))
	case record.VoteCount >= cfg.PopularVoteCount:
		apply(FactorPopularity, cfg.PopularVoteBonus,
			fmt.Sprintf("popular (%d votes)", record.VoteCount))
	}

	if personalizationSignal > 0 {
		apply(FactorPersonalization, cfg.PersonalizationBonus,
			fmt.Sprintf("similar to %d titles you rated highly", personalizationSignal))
	}

	if score > cfg.MaxScore {
		score = cfg.MaxScore
	}

	return media.MatchResult{
		Record:       record,
		MatchPercent: score,
		Reasons:      reasons,
	}
}
