package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docent/core"
)

// ISO 8601 patterns
var (
	isoDateTimeRe = regexp.MustCompile(
		`\b(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)\b`)
	isoDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

// Common date formats
var (
	writtenDateRe = regexp.MustCompile(
		`(?i)\b((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
)

// Relative references, resolved against the extractor's reference time.
type relativeKind int

const (
	relYesterday relativeKind = iota
	relToday
	relTomorrow
	relLastWeek
	relNextWeek
	relLastMonth
	relNDaysAgo
	relNWeeksAgo
)

var relativePatterns = []struct {
	re   *regexp.Regexp
	kind relativeKind
}{
	{regexp.MustCompile(`(?i)\byesterday\b`), relYesterday},
	{regexp.MustCompile(`(?i)\btoday\b`), relToday},
	{regexp.MustCompile(`(?i)\btomorrow\b`), relTomorrow},
	{regexp.MustCompile(`(?i)\blast\s+week\b`), relLastWeek},
	{regexp.MustCompile(`(?i)\bnext\s+week\b`), relNextWeek},
	{regexp.MustCompile(`(?i)\blast\s+month\b`), relLastMonth},
	{regexp.MustCompile(`(?i)\b(\d+)\s+days?\s+ago\b`), relNDaysAgo},
	{regexp.MustCompile(`(?i)\b(\d+)\s+weeks?\s+ago\b`), relNWeeksAgo},
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// DateExtractor finds absolute and relative time references in text.
//
// Pattern tiers are applied in fixed priority order: ISO datetime, ISO
// date-only, written date, slash date, relative phrase. An ISO date-only
// match whose span falls inside an ISO datetime match is suppressed so the
// date portion of a datetime is not reported twice; no other cross-tier
// suppression is applied. Results are sorted by span start, ties broken by
// tier discovery order.
type DateExtractor struct {
	reference time.Time
}

// DateOption configures a DateExtractor.
type DateOption func(*DateExtractor)

// WithReferenceTime fixes the instant relative phrases resolve against.
// When unset, each Extract call uses the current wall-clock instant (UTC).
func WithReferenceTime(ref time.Time) DateOption {
	return func(e *DateExtractor) {
		e.reference = ref
	}
}

// NewDateExtractor creates a date extractor.
func NewDateExtractor(opts ...DateOption) *DateExtractor {
	e := &DateExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every date reference found in text, sorted by span start.
// Matches that fail calendar validation are skipped; Extract never fails.
func (e *DateExtractor) Extract(text string) []core.ExtractedDate {
	ref := e.reference
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	results := []core.ExtractedDate{}

	// ISO datetime (most specific first)
	for _, loc := range isoDateTimeRe.FindAllStringIndex(text, -1) {
		if dt, ok := parseISODateTime(text[loc[0]:loc[1]]); ok {
			results = append(results, core.ExtractedDate{
				Value:        dt,
				OriginalText: text[loc[0]:loc[1]],
				Start:        loc[0],
				End:          loc[1],
			})
		}
	}

	// ISO date only, suppressed inside spans already claimed by a datetime
	claimed := make([][2]int, len(results))
	for i, r := range results {
		claimed[i] = [2]int{r.Start, r.End}
	}
	for _, loc := range isoDateRe.FindAllStringIndex(text, -1) {
		if containedIn(claimed, loc[0], loc[1]) {
			continue
		}
		if dt, ok := parseISODate(text[loc[0]:loc[1]]); ok {
			results = append(results, core.ExtractedDate{
				Value:        dt,
				OriginalText: text[loc[0]:loc[1]],
				Start:        loc[0],
				End:          loc[1],
			})
		}
	}

	// Written dates (e.g. "January 15, 2025")
	for _, loc := range writtenDateRe.FindAllStringIndex(text, -1) {
		if dt, ok := parseWrittenDate(text[loc[0]:loc[1]]); ok {
			results = append(results, core.ExtractedDate{
				Value:        dt,
				OriginalText: text[loc[0]:loc[1]],
				Start:        loc[0],
				End:          loc[1],
			})
		}
	}

	// Slash dates (M/D/YYYY)
	for _, loc := range slashDateRe.FindAllStringIndex(text, -1) {
		if dt, ok := parseSlashDate(text[loc[0]:loc[1]]); ok {
			results = append(results, core.ExtractedDate{
				Value:        dt,
				OriginalText: text[loc[0]:loc[1]],
				Start:        loc[0],
				End:          loc[1],
			})
		}
	}

	// Relative phrases
	for _, p := range relativePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			dt, ok := resolveRelative(p.kind, text, loc, ref)
			if !ok {
				continue
			}
			results = append(results, core.ExtractedDate{
				Value:        dt,
				OriginalText: text[loc[0]:loc[1]],
				Start:        loc[0],
				End:          loc[1],
				IsRelative:   true,
			})
		}
	}

	// Stable sort keeps tier discovery order for equal starts
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})
	return results
}

func containedIn(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if s[0] <= start && end <= s[1] {
			return true
		}
	}
	return false
}

func resolveRelative(kind relativeKind, text string, loc []int, ref time.Time) (time.Time, bool) {
	switch kind {
	case relYesterday:
		return ref.AddDate(0, 0, -1), true
	case relToday:
		return ref, true
	case relTomorrow:
		return ref.AddDate(0, 0, 1), true
	case relLastWeek:
		return ref.AddDate(0, 0, -7), true
	case relNextWeek:
		return ref.AddDate(0, 0, 7), true
	case relLastMonth:
		// One calendar month back with year rollover. time.Date normalizes
		// out-of-range days (e.g. March 31 -> March 3).
		return time.Date(ref.Year(), ref.Month()-1, ref.Day(),
			ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location()), true
	case relNDaysAgo, relNWeeksAgo:
		if len(loc) < 4 || loc[2] < 0 {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			return time.Time{}, false
		}
		if kind == relNWeeksAgo {
			n *= 7
		}
		return ref.AddDate(0, 0, -n), true
	}
	return time.Time{}, false
}

var isoDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

func parseISODateTime(s string) (time.Time, bool) {
	// The pattern also admits a space separator
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range isoDateTimeLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt, true
		}
	}
	return time.Time{}, false
}

func parseISODate(s string) (time.Time, bool) {
	dt, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return dt, true
}

func parseWrittenDate(s string) (time.Time, bool) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
	if len(parts) < 3 {
		return time.Time{}, false
	}
	month, ok := monthNames[strings.ToLower(parts[0])]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return makeDate(year, month, day)
}

func parseSlashDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return makeDate(year, time.Month(month), day)
}

// makeDate builds a UTC midnight instant, rejecting component combinations
// that do not survive calendar normalization (e.g. month 13, February 30).
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	dt := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if dt.Year() != year || dt.Month() != month || dt.Day() != day {
		return time.Time{}, false
	}
	return dt, true
}
