package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// EntityKind identifies the pattern family that produced an ExtractedEntity.
type EntityKind string

const (
	// EntityJiraTicket is a ticket code like "PROJ-123".
	EntityJiraTicket EntityKind = "jira_ticket"
	// EntityPerson is an @mention or a "Firstname Lastname (Title)" reference.
	EntityPerson EntityKind = "person"
	// EntityURL is an http(s) URL.
	EntityURL EntityKind = "url"
	// EntityEmail is an email address.
	EntityEmail EntityKind = "email"
)

// ExtractedDate is a date reference found in text, with the half-open
// character span [Start, End) it was matched at.
type ExtractedDate struct {
	Value        time.Time
	OriginalText string
	Start        int
	End          int
	IsRelative   bool
}

// ExtractedEntity is a named entity found in text.
type ExtractedEntity struct {
	Kind         EntityKind
	Value        string
	OriginalText string
	Start        int
	End          int
}

// ScoreBreakdown carries the per-factor components of a confidence score.
// Every field is in [0, 1] and rounded to 3 decimal places. FinalScore is
// the only externally meaningful value; the rest exist for auditability.
type ScoreBreakdown struct {
	SourceScore        float64
	PrecisionScore     float64
	CompletenessScore  float64
	CorroborationBonus float64
	FinalScore         float64
}

// IngestResult summarizes one ingested unit (a text, a file, or a CSV row).
// It is never mutated after creation.
type IngestResult struct {
	DocID             string
	Title             string
	ObservedAt        string
	Confidence        float64
	ExtractedDates    int
	ExtractedEntities int
	Embedded          bool
}

// Document is a vault document record. ObservedAt is the ISO-8601 instant
// the document claims to represent, as opposed to ingestion time.
type Document struct {
	ID         string
	Type       string
	Title      string
	ObservedAt string
	Body       string
	Tags       []string
	CreatedAt  time.Time
}

// docTypeShortCodes maps document types to the short codes that prefix IDs.
var docTypeShortCodes = map[string]string{
	"project":  "proj",
	"meeting":  "meet",
	"decision": "deci",
	"signal":   "sign",
	"document": "doc",
}

// shortCodeTypes is the inverse of docTypeShortCodes.
var shortCodeTypes = map[string]string{
	"proj": "project",
	"meet": "meeting",
	"deci": "decision",
	"sign": "signal",
	"doc":  "document",
}

// DocumentID derives a deterministic document ID from content using BLAKE2b
// hashing, prefixed with the type's short code. Identical content always
// produces the identical ID.
func DocumentID(docType, title, observedAt, body string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(docType))
	h.Write([]byte{0})
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(observedAt))
	h.Write([]byte{0})
	h.Write([]byte(body))
	sum := h.Sum(nil)

	short, ok := docTypeShortCodes[docType]
	if !ok {
		short = docType
	}
	return short + "-" + hex.EncodeToString(sum)
}

// DocTypeFromID infers the document type from an ID's short-code prefix,
// e.g. "proj-1a2b..." -> "project". Unknown prefixes pass through unchanged.
func DocTypeFromID(id string) string {
	prefix := id
	if i := strings.IndexByte(id, '-'); i >= 0 {
		prefix = id[:i]
	}
	if t, ok := shortCodeTypes[prefix]; ok {
		return t
	}
	return prefix
}

