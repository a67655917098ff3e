package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/vault"
)

// Confidence assigned to CSV-imported rows. Tabular imports carry a fixed
// "import" trust level rather than going through the scorer.
const csvImportConfidence = 0.8

// dateHintNames are header names that mark a column as date-bearing.
var dateHintNames = map[string]bool{
	"date":         true,
	"created":      true,
	"created_at":   true,
	"created_date": true,
	"updated":      true,
	"updated_at":   true,
	"modified":     true,
	"modified_at":  true,
	"observed_at":  true,
	"timestamp":    true,
	"time":         true,
	"datetime":     true,
	"occurred_at":  true,
	"start_date":   true,
	"end_date":     true,
	"due_date":     true,
}

// Shapes recognized during statistical date-column detection.
var (
	isoCellPattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}:\d{2})?`)
	slashCellPattern   = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	writtenCellPattern = regexp.MustCompile(`(?i)^(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}$`)

	bareDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// monthNumbers resolves written month names during date normalization.
// Only full names qualify; abbreviated cells pass through unchanged.
var monthNumbers = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ColumnMapping overrides column-role auto-detection. Each set field
// replaces detection wholesale for that role.
type ColumnMapping struct {
	TitleColumn string
	DateColumn  string
	BodyColumns []string
}

// CSVAdapter maps tabular rows to vault documents, inferring column roles
// when no explicit mapping is supplied.
type CSVAdapter struct {
	vault   vault.Vault
	mapping ColumnMapping
	logger  *slog.Logger
}

// CSVOption configures a CSVAdapter.
type CSVOption func(*CSVAdapter)

// WithColumnMapping supplies an explicit column mapping. Unset fields still
// fall back to auto-detection.
func WithColumnMapping(m ColumnMapping) CSVOption {
	return func(a *CSVAdapter) { a.mapping = m }
}

// WithCSVLogger sets a custom logger. Default is slog.Default().
func WithCSVLogger(logger *slog.Logger) CSVOption {
	return func(a *CSVAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewCSVAdapter creates a CSV adapter over the given vault.
func NewCSVAdapter(v vault.Vault, opts ...CSVOption) (*CSVAdapter, error) {
	if v == nil {
		return nil, ErrVaultRequired
	}

	a := &CSVAdapter{
		vault:  v,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "csv")

	return a, nil
}

// IngestCSV reads a CSV file and commits one document per data row, in file
// order. A file with no header row or no data rows yields an empty result.
func (a *CSVAdapter) IngestCSV(ctx context.Context, path string) ([]*core.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []*core.IngestResult{}, nil
	}

	header := records[0]
	rows := records[1:]

	titleIdx := a.resolveTitleColumn(header)
	dateIdx := a.resolveDateColumn(header, rows)
	bodyIdxs := a.resolveBodyColumns(header, titleIdx, dateIdx)

	a.logger.Info("ingesting csv", "path", path, "rows", len(rows),
		"title_column", columnName(header, titleIdx), "date_column", columnName(header, dateIdx))

	results := make([]*core.IngestResult, 0, len(rows))
	for _, row := range rows {
		result, err := a.ingestRow(ctx, header, row, titleIdx, dateIdx, bodyIdxs)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (a *CSVAdapter) ingestRow(ctx context.Context, header, row []string, titleIdx, dateIdx int, bodyIdxs []int) (*core.IngestResult, error) {
	title := "Untitled"
	if v := strings.TrimSpace(cell(row, titleIdx)); v != "" {
		title = v
	}

	observedAt := ""
	if dateIdx >= 0 {
		if v := strings.TrimSpace(cell(row, dateIdx)); v != "" {
			observedAt = normalizeDate(v)
		}
	}
	if observedAt == "" {
		observedAt = time.Now().UTC().Format(time.RFC3339)
	}

	var parts []string
	for _, idx := range bodyIdxs {
		v := strings.TrimSpace(cell(row, idx))
		if v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s**: %s", header[idx], v))
	}
	body := strings.Join(parts, "\n\n")

	doc, err := a.vault.CreateDocument(ctx, defaultDocType, title, observedAt, body, nil)
	if err != nil {
		return nil, err
	}

	return &core.IngestResult{
		DocID:      doc.ID,
		Title:      title,
		ObservedAt: observedAt,
		Confidence: csvImportConfidence,
	}, nil
}

// resolveTitleColumn picks the title column: explicit mapping, else the
// first header without a date-hint name, else the first header.
func (a *CSVAdapter) resolveTitleColumn(header []string) int {
	if a.mapping.TitleColumn != "" {
		if idx := indexOfHeader(header, a.mapping.TitleColumn); idx >= 0 {
			return idx
		}
	}
	for i, name := range header {
		if !dateHintNames[strings.ToLower(strings.TrimSpace(name))] {
			return i
		}
	}
	return 0
}

// resolveDateColumn picks the date column: explicit mapping, else a
// date-hint header name, else statistical detection over the first 5 rows.
// Returns -1 when no column qualifies.
func (a *CSVAdapter) resolveDateColumn(header []string, rows [][]string) int {
	if a.mapping.DateColumn != "" {
		if idx := indexOfHeader(header, a.mapping.DateColumn); idx >= 0 {
			return idx
		}
	}

	for i, name := range header {
		if dateHintNames[strings.ToLower(strings.TrimSpace(name))] {
			return i
		}
	}

	sample := rows
	if len(sample) > 5 {
		sample = sample[:5]
	}
	for i := range header {
		nonEmpty, dateLike := 0, 0
		for _, row := range sample {
			v := strings.TrimSpace(cell(row, i))
			if v == "" {
				continue
			}
			nonEmpty++
			if looksLikeDate(v) {
				dateLike++
			}
		}
		if nonEmpty > 0 && dateLike*2 >= nonEmpty {
			return i
		}
	}
	return -1
}

// resolveBodyColumns picks body columns: explicit list, else every header
// except the title and date columns.
func (a *CSVAdapter) resolveBodyColumns(header []string, titleIdx, dateIdx int) []int {
	if len(a.mapping.BodyColumns) > 0 {
		var idxs []int
		for _, name := range a.mapping.BodyColumns {
			if idx := indexOfHeader(header, name); idx >= 0 {
				idxs = append(idxs, idx)
			}
		}
		return idxs
	}

	var idxs []int
	for i := range header {
		if i == titleIdx || i == dateIdx {
			continue
		}
		idxs = append(idxs, i)
	}
	return idxs
}

func looksLikeDate(v string) bool {
	return isoCellPattern.MatchString(v) ||
		slashCellPattern.MatchString(v) ||
		writtenCellPattern.MatchString(v)
}

// normalizeDate produces a full ISO-8601 instant: bare dates get a midnight
// UTC time appended, slash and written dates are converted to the same
// shape, and unrecognized values pass through unchanged.
func normalizeDate(v string) string {
	if bareDatePattern.MatchString(v) {
		return v + "T00:00:00Z"
	}

	if m := slashCellPattern.FindString(v); m != "" {
		parts := strings.Split(m, "/")
		if t, ok := calendarDate(parts[2], parts[0], parts[1]); ok {
			return t.Format("2006-01-02") + "T00:00:00Z"
		}
		return v
	}

	if writtenCellPattern.MatchString(v) {
		fields := strings.FieldsFunc(v, func(r rune) bool {
			return r == ' ' || r == ','
		})
		if len(fields) >= 3 {
			month, ok := monthNumbers[strings.ToLower(fields[0])]
			if ok {
				if t, okDate := calendarDate(fields[2], fmt.Sprintf("%d", int(month)), fields[1]); okDate {
					return t.Format("2006-01-02") + "T00:00:00Z"
				}
			}
		}
		return v
	}

	return v
}

// calendarDate validates year/month/day strings against the real calendar.
func calendarDate(year, month, day string) (time.Time, bool) {
	t, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", year, month, day))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func indexOfHeader(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func columnName(header []string, idx int) string {
	if idx < 0 || idx >= len(header) {
		return ""
	}
	return header[idx]
}
