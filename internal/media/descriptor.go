package media

import (
	"strconv"
	"strings"
	"unicode"
)

// Kind distinguishes films from episodic series.
type Kind string

const (
	KindUnknown Kind = ""
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
)

// String returns the kind label, defaulting to movie for unknown values.
func (k Kind) String() string {
	if k == KindSeries {
		return string(KindSeries)
	}
	return string(KindMovie)
}

// Descriptor is a lightweight candidate reference to a media item before
// resolution. Produced by query normalization or free-text parsing and
// consumed once by the resolver.
type Descriptor struct {
	Title     string
	Year      int
	Language  string
	GenreHint string
	Kind      Kind

	// FromFreeText marks descriptors extracted from natural-language input.
	// Only those are eligible for assisted re-extraction when the catalog
	// lookup misses.
	FromFreeText bool

	// Source preserves the raw query the descriptor was derived from, used
	// to build re-extraction prompts.
	Source string
}

// Key returns the normalized deduplication key: punctuation-stripped
// lowercase title plus year and kind. Two descriptors with equal keys are
// treated as the same request.
func (d Descriptor) Key() string {
	var b strings.Builder
	b.WriteString(NormalizeTitle(d.Title))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(d.Year))
	b.WriteByte('|')
	b.WriteString(d.Kind.String())
	return b.String()
}

// NormalizeTitle lowercases the input, maps common symbols to their word
// equivalents, and strips everything that is not a letter or digit, so that
// "Spider-Man" and "spider man" compare equal.
func NormalizeTitle(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "&", "and")
	normalized = strings.ReplaceAll(normalized, "+", "and")

	var builder strings.Builder
	for _, r := range normalized {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// DedupDescriptors drops descriptors whose normalized key repeats, keeping
// the first occurrence and its field values.
func DedupDescriptors(descriptors []Descriptor) []Descriptor {
	seen := make(map[string]struct{}, len(descriptors))
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		key := d.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
