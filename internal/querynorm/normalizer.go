package querynorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marquee/internal/media"
)

var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)

// languageNames is the fixed vocabulary of language and film-industry names
// recognized inside queries. Values are lowercase; display casing is applied
// on extraction.
var languageNames = map[string]struct{}{
	"hindi":     {},
	"english":   {},
	"korean":    {},
	"japanese":  {},
	"chinese":   {},
	"mandarin":  {},
	"tamil":     {},
	"telugu":    {},
	"kannada":   {},
	"malayalam": {},
	"bengali":   {},
	"marathi":   {},
	"punjabi":   {},
	"french":    {},
	"german":    {},
	"spanish":   {},
	"italian":   {},
	"turkish":   {},
	"thai":      {},
	"bollywood": {},
	"tollywood": {},
}

// noiseTokens are dropped when they trail a query ("Dune movie", "Dark
// series version").
var noiseTokens = map[string]struct{}{
	"movie":   {},
	"movies":  {},
	"film":    {},
	"series":  {},
	"show":    {},
	"version": {},
}

var seriesTokens = map[string]struct{}{
	"series":  {},
	"season":  {},
	"seasons": {},
	"episode": {},
	"show":    {},
}

var titleCaser = cases.Title(language.Und)

// Normalize converts a raw query into a candidate descriptor. It never
// fails: if no structure is detected the original string comes back as the
// title with everything else unset.
func Normalize(rawQuery string) media.Descriptor {
	trimmed := strings.Join(strings.Fields(rawQuery), " ")
	descriptor := media.Descriptor{
		Title:        trimmed,
		Source:       trimmed,
		FromFreeText: true,
	}
	if trimmed == "" {
		return descriptor
	}

	descriptor.Kind = detectKind(trimmed)

	tokens := strings.Fields(trimmed)

	// Trailing noise first, so "Super Kannada Movie" keeps "Super Kannada"
	// for the structural scan below.
	for len(tokens) > 1 {
		last := strings.ToLower(trimToken(tokens[len(tokens)-1]))
		if _, ok := noiseTokens[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	maxYear := time.Now().Year() + 1
	remainder := make([]string, 0, len(tokens))
	for _, token := range tokens {
		cleaned := trimToken(token)
		lower := strings.ToLower(cleaned)

		if descriptor.Year == 0 && yearPattern.MatchString(cleaned) {
			if year, err := strconv.Atoi(cleaned); err == nil && year >= 1900 && year <= maxYear {
				descriptor.Year = year
				continue
			}
		}
		if descriptor.Language == "" {
			if _, ok := languageNames[lower]; ok {
				descriptor.Language = titleCaser.String(lower)
				continue
			}
		}
		remainder = append(remainder, token)
	}

	title := strings.TrimSpace(strings.Join(remainder, " "))
	if title != "" {
		descriptor.Title = title
	}
	return descriptor
}

func detectKind(query string) media.Kind {
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if _, ok := seriesTokens[trimToken(token)]; ok {
			return media.KindSeries
		}
	}
	return media.KindMovie
}

func trimToken(token string) string {
	return strings.Trim(token, "()[]{}.,:;!?\"'")
}
