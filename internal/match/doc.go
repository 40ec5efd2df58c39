// Package match computes the bounded relevance percentage used to rank
// resolved records for a user.
//
// Scoring is deterministic and purely additive: a base score plus bonuses
// for language, rating tier, genre overlap, recency, vote-count acclaim, and
// a caller-supplied personalization signal, capped below 100 so no item is
// ever presented as a perfect match. Every applied bonus appends an ordered
// reason entry for explainability. The thresholds are tuning constants owned
// by the config package.
package match
