package extraction

import (
	"regexp"
	"sort"

	"github.com/poiesic/docent/core"
)

// Ticket code pattern: PROJECT-123
var jiraTicketRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]+-\d+)\b`)

// Person mention: @handle or Firstname Lastname (Title)
var (
	atMentionRe   = regexp.MustCompile(`@(\w[\w.-]*\w|\w)`)
	personTitleRe = regexp.MustCompile(
		`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\s*\(` +
			`(?:CEO|CTO|VP|Director|Manager|Lead|Engineer|PM|Designer|Analyst)` +
			`\)`)
)

// URL pattern, excluding trailing quote/bracket/paren characters
var urlRe = regexp.MustCompile(`(?i)https?://[^\s<>"')\]]+`)

// Email pattern
var emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

// EntityExtractor finds ticket codes, person mentions, URLs, and email
// addresses in text. The four pattern families are scanned independently and
// merged without cross-family de-duplication: a substring can legitimately
// match more than one family, and such overlaps are preserved.
type EntityExtractor struct{}

// NewEntityExtractor creates an entity extractor.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{}
}

// Extract returns every entity found in text, sorted by span start.
func (e *EntityExtractor) Extract(text string) []core.ExtractedEntity {
	results := []core.ExtractedEntity{}

	// Ticket codes
	for _, loc := range jiraTicketRe.FindAllStringSubmatchIndex(text, -1) {
		results = append(results, core.ExtractedEntity{
			Kind:         core.EntityJiraTicket,
			Value:        text[loc[2]:loc[3]],
			OriginalText: text[loc[0]:loc[1]],
			Start:        loc[0],
			End:          loc[1],
		})
	}

	// @mentions
	for _, loc := range atMentionRe.FindAllStringSubmatchIndex(text, -1) {
		results = append(results, core.ExtractedEntity{
			Kind:         core.EntityPerson,
			Value:        text[loc[2]:loc[3]],
			OriginalText: text[loc[0]:loc[1]],
			Start:        loc[0],
			End:          loc[1],
		})
	}

	// Person with title
	for _, loc := range personTitleRe.FindAllStringSubmatchIndex(text, -1) {
		results = append(results, core.ExtractedEntity{
			Kind:         core.EntityPerson,
			Value:        text[loc[2]:loc[3]],
			OriginalText: text[loc[0]:loc[1]],
			Start:        loc[0],
			End:          loc[1],
		})
	}

	// URLs
	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		results = append(results, core.ExtractedEntity{
			Kind:         core.EntityURL,
			Value:        text[loc[0]:loc[1]],
			OriginalText: text[loc[0]:loc[1]],
			Start:        loc[0],
			End:          loc[1],
		})
	}

	// Emails
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		results = append(results, core.ExtractedEntity{
			Kind:         core.EntityEmail,
			Value:        text[loc[0]:loc[1]],
			OriginalText: text[loc[0]:loc[1]],
			Start:        loc[0],
			End:          loc[1],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})
	return results
}

// ExtractByKind returns only the entities of the given kind, in the same
// order Extract would report them.
func (e *EntityExtractor) ExtractByKind(text string, kind core.EntityKind) []core.ExtractedEntity {
	all := e.Extract(text)
	filtered := []core.ExtractedEntity{}
	for _, ent := range all {
		if ent.Kind == kind {
			filtered = append(filtered, ent)
		}
	}
	return filtered
}
