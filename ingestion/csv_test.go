package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/vault/badger"
)

func newTestCSVAdapter(t *testing.T, opts ...CSVOption) (*CSVAdapter, *badger.Store) {
	t.Helper()

	store, err := badger.NewMemoryVault(badger.WithEmbeddingDim(8))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	adapter, err := NewCSVAdapter(store, opts...)
	require.NoError(t, err)

	return adapter, store
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVCreatedDateColumn(t *testing.T) {
	adapter, _ := newTestCSVAdapter(t)

	path := writeCSV(t, "title,created_date,notes\n"+
		"Kickoff,2025-01-15,Project kickoff meeting\n"+
		"Review,2025-02-20,Design review\n")

	results, err := adapter.IngestCSV(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "2025-01-15T00:00:00Z", results[0].ObservedAt)
	assert.Equal(t, "2025-02-20T00:00:00Z", results[1].ObservedAt)
	assert.Equal(t, "Kickoff", results[0].Title)
	assert.Equal(t, 0.8, results[0].Confidence)
}

func TestCSVNoDateColumnFallsBackToNow(t *testing.T) {
	adapter, _ := newTestCSVAdapter(t)

	path := writeCSV(t, "name,notes\nAlpha,First entry\nBeta,Second entry\n")

	results, err := adapter.IngestCSV(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		require.NotEmpty(t, result.ObservedAt)
		_, err := time.Parse(time.RFC3339, result.ObservedAt)
		assert.NoError(t, err)
	}
}

func TestCSVStatisticalDateDetection(t *testing.T) {
	adapter, _ := newTestCSVAdapter(t)

	// "when" is not a date-hint name but its cells are date-shaped
	path := writeCSV(t, "name,when\nAlpha,2025-01-15\nBeta,2025-02-20\nGamma,2025-03-25\n")

	results, err := adapter.IngestCSV(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "2025-01-15T00:00:00Z", results[0].ObservedAt)
}

func TestCSVEmptyAndHeaderOnly(t *testing.T) {
	adapter, _ := newTestCSVAdapter(t)

	headerOnly := writeCSV(t, "title,notes\n")
	results, err := adapter.IngestCSV(context.Background(), headerOnly)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCSVBodyRendering(t *testing.T) {
	adapter, store := newTestCSVAdapter(t)
	ctx := context.Background()

	path := writeCSV(t, "title,created_date,notes,owner\n"+
		"Kickoff,2025-01-15,Project kickoff,alice\n")

	results, err := adapter.IngestCSV(ctx, path)
	require.NoError(t, err)
	require.Len(t, results, 1)

	doc, err := store.ReadDocument(ctx, "document", results[0].DocID)
	require.NoError(t, err)
	assert.Equal(t, "**notes**: Project kickoff\n\n**owner**: alice", doc.Body)
}

func TestCSVEmptyCellsOmittedFromBody(t *testing.T) {
	adapter, store := newTestCSVAdapter(t)
	ctx := context.Background()

	path := writeCSV(t, "title,notes,owner\nKickoff,,alice\n")

	results, err := adapter.IngestCSV(ctx, path)
	require.NoError(t, err)
	require.Len(t, results, 1)

	doc, err := store.ReadDocument(ctx, "document", results[0].DocID)
	require.NoError(t, err)
	assert.Equal(t, "**owner**: alice", doc.Body)
}

func TestCSVUntitledRow(t *testing.T) {
	adapter, _ := newTestCSVAdapter(t)

	path := writeCSV(t, "title,notes\n  ,Some notes\n")

	results, err := adapter.IngestCSV(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Untitled", results[0].Title)
}

func TestCSVColumnMappingOverride(t *testing.T) {
	adapter, store := newTestCSVAdapter(t, WithColumnMapping(ColumnMapping{
		TitleColumn: "summary",
		DateColumn:  "logged",
		BodyColumns: []string{"details"},
	}))
	ctx := context.Background()

	path := writeCSV(t, "id,summary,logged,details,extra\n"+
		"7,Incident report,2025-04-01,Root cause found,ignored\n")

	results, err := adapter.IngestCSV(ctx, path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Incident report", results[0].Title)
	assert.Equal(t, "2025-04-01T00:00:00Z", results[0].ObservedAt)

	doc, err := store.ReadDocument(ctx, "document", results[0].DocID)
	require.NoError(t, err)
	assert.Equal(t, "**details**: Root cause found", doc.Body)
	assert.False(t, strings.Contains(doc.Body, "ignored"))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"bare iso date", "2025-01-15", "2025-01-15T00:00:00Z"},
		{"slash date", "3/7/2025", "2025-03-07T00:00:00Z"},
		{"written date", "March 7, 2025", "2025-03-07T00:00:00Z"},
		{"abbreviated month passes through", "Mar 7 2025", "Mar 7 2025"},
		{"four letter abbreviation passes through", "Sept 5, 2025", "Sept 5, 2025"},
		{"full instant passes through", "2025-01-15T09:30:00Z", "2025-01-15T09:30:00Z"},
		{"unrecognized passes through", "sometime next week", "sometime next week"},
		{"invalid calendar slash date", "13/45/2025", "13/45/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeDate(tt.in))
		})
	}
}
