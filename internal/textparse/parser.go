package textparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"marquee/internal/media"
)

// entry is one (title, year) pair produced by an extractor. Year may be zero.
type entry struct {
	title string
	year  int
}

// extractor is a pure pattern strategy over the full reply text. Extractors
// are independent; their outputs are unioned.
type extractor func(text string) []entry

var extractors = []extractor{
	extractNumberedParenYear,
	extractNumberedDashYear,
	extractBoldMarkdownYear,
	extractLineStartTitleYear,
}

var (
	numberedParenPattern = regexp.MustCompile(`(?m)^\s*\d{1,3}[.)]\s+(.+?)\s*\((\d{4})\)`)
	numberedDashPattern  = regexp.MustCompile(`(?m)^\s*\d{1,3}[.)]\s+(.+?)\s*[-–—]\s*(\d{4})\b`)
	boldMarkdownPattern  = regexp.MustCompile(`\*\*([^*\n]+?)\*\*\s*\((\d{4})\)`)
	lineStartPattern     = regexp.MustCompile(`(?m)^([A-Z][^\n(]{0,79}?)\s+\((\d{4})\)`)

	trailingParenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	listHintPattern      = regexp.MustCompile(`(?i)\b(top|best|recommend\w*|list|suggest\w*)\b|\d`)
	seriesHintPattern    = regexp.MustCompile(`(?i)\b(series|season|episode|show)\b`)
)

// Parse extracts zero or more descriptors from freeform prose. hintQuery is
// the query that produced the prose; it drives the single-title fallback and
// is preserved as each descriptor's source. Parse never fails; malformed
// input yields an empty slice or the fallback descriptor.
func Parse(freeformText, hintQuery string) []media.Descriptor {
	seen := make(map[string]struct{})
	var descriptors []media.Descriptor

	for _, extract := range extractors {
		for _, found := range extract(freeformText) {
			title := cleanTitle(found.title)
			if title == "" {
				continue
			}
			year := found.year
			if !plausibleYear(year) {
				year = 0
			}
			key := strings.ToLower(title) + "|" + strconv.Itoa(year)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			descriptors = append(descriptors, media.Descriptor{
				Title:        title,
				Year:         year,
				Kind:         guessKind(title + " " + hintQuery),
				FromFreeText: true,
				Source:       hintQuery,
			})
		}
	}

	if len(descriptors) > 0 {
		return descriptors
	}

	// Models sometimes answer a single-title query with a narrative
	// paragraph. If the query itself was not asking for a list, treat it
	// as one literal title rather than returning nothing.
	hint := strings.TrimSpace(hintQuery)
	if hint == "" || listHintPattern.MatchString(hint) {
		return nil
	}
	return []media.Descriptor{{
		Title:        cleanTitle(hint),
		Kind:         guessKind(hint),
		FromFreeText: true,
		Source:       hintQuery,
	}}
}

func extractNumberedParenYear(text string) []entry {
	return matchPairs(numberedParenPattern, text)
}

func extractNumberedDashYear(text string) []entry {
	return matchPairs(numberedDashPattern, text)
}

func extractBoldMarkdownYear(text string) []entry {
	return matchPairs(boldMarkdownPattern, text)
}

func extractLineStartTitleYear(text string) []entry {
	return matchPairs(lineStartPattern, text)
}

func matchPairs(pattern *regexp.Regexp, text string) []entry {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	entries := make([]entry, 0, len(matches))
	for _, match := range matches {
		year, _ := strconv.Atoi(match[2])
		entries = append(entries, entry{title: match[1], year: year})
	}
	return entries
}

// cleanTitle strips markdown emphasis markers, leftover list numbering, and
// trailing parenthetical annotations from an extracted title.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "*_`")
	title = trailingParenPattern.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "\"'")
	return strings.TrimSpace(title)
}

func guessKind(text string) media.Kind {
	if seriesHintPattern.MatchString(text) {
		return media.KindSeries
	}
	return media.KindMovie
}

func plausibleYear(year int) bool {
	return year >= 1900 && year <= time.Now().Year()+1
}
