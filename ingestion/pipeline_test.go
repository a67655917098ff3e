package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/embeddings"
	"github.com/poiesic/docent/vault/badger"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *badger.Store) {
	t.Helper()

	store, err := badger.NewMemoryVault(badger.WithEmbeddingDim(8))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p, err := NewPipeline(store, opts...)
	require.NoError(t, err)

	return p, store
}

func TestNewPipelineRequiresVault(t *testing.T) {
	_, err := NewPipeline(nil)
	require.ErrorIs(t, err, ErrVaultRequired)
}

func TestIngestTextTitleFromHeading(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.IngestText(context.Background(), "# Sprint Notes\n\nDiscussed the release.")
	require.NoError(t, err)
	assert.Equal(t, "Sprint Notes", result.Title)
}

func TestIngestTextTitleFromFirstLine(t *testing.T) {
	p, _ := newTestPipeline(t)

	long := strings.Repeat("x", 120)
	result, err := p.IngestText(context.Background(), long+"\nmore text")
	require.NoError(t, err)
	assert.Equal(t, long[:80], result.Title)
}

func TestIngestTextTitleTruncatesOnRuneBoundary(t *testing.T) {
	p, _ := newTestPipeline(t)

	// A multi-byte rune straddling the cut point must survive intact.
	line := strings.Repeat("a", 79) + "émission"
	result, err := p.IngestText(context.Background(), line)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(result.Title))
	assert.Equal(t, 80, utf8.RuneCountInString(result.Title))
	assert.Equal(t, strings.Repeat("a", 79)+"é", result.Title)
}

func TestIngestTextUntitled(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.IngestText(context.Background(), "   \n\n  ")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", result.Title)
	assert.NotEmpty(t, result.ObservedAt)
}

func TestIngestTextObservedAtFromExtractedDate(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.IngestText(context.Background(), "Meeting held on 2025-01-05 with the team.")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05T00:00:00Z", result.ObservedAt)
	assert.Equal(t, 1, result.ExtractedDates)
}

func TestIngestTextExplicitObservedAtWins(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.IngestText(context.Background(), "Meeting held on 2025-01-05.",
		WithObservedAt("2024-06-01T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:00:00Z", result.ObservedAt)
}

func TestIngestTextEntityTags(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	result, err := p.IngestText(ctx, "Fixed in PROJ-123. See PROJ-123 again and ping @alice.")
	require.NoError(t, err)

	doc, err := store.ReadDocument(ctx, "document", result.DocID)
	require.NoError(t, err)
	assert.Equal(t, []string{"jira_ticket:PROJ-123", "person:alice"}, doc.Tags)
	assert.Equal(t, 3, result.ExtractedEntities)
}

func TestIngestTextConfidence(t *testing.T) {
	p, _ := newTestPipeline(t)

	// import source, day precision, body present, tags present, no links:
	// 0.3*0.9 + 0.2*0.95 + 0.3*0.75 + 0.2*0 = 0.685
	result, err := p.IngestText(context.Background(), "Fixed in PROJ-123.")
	require.NoError(t, err)
	assert.InDelta(t, 0.685, result.Confidence, 1e-9)
}

func TestIngestTextWithEmbedder(t *testing.T) {
	store, err := badger.NewMemoryVault(badger.WithEmbeddingDim(8))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gen, err := embeddings.NewGenerator(store, mock.NewBackend(8))
	require.NoError(t, err)

	p, err := NewPipeline(store, WithEmbedder(gen))
	require.NoError(t, err)

	ctx := context.Background()
	result, err := p.IngestText(ctx, "# Embedded note\n\nBody.")
	require.NoError(t, err)
	assert.True(t, result.Embedded)

	has, err := store.HasEmbedding(ctx, result.DocID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIngestFile(t *testing.T) {
	p, _ := newTestPipeline(t)

	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# File note\n\nContents."), 0644))

	result, err := p.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "File note", result.Title)
}

func TestIngestDirectory(t *testing.T) {
	p, _ := newTestPipeline(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# Second"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# First"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("not markdown"), 0644))

	results, err := p.IngestDirectory(context.Background(), dir, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Title)
	assert.Equal(t, "Second", results[1].Title)
}

func TestIngestDirectoryAbortsOnFailure(t *testing.T) {
	p, _ := newTestPipeline(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# Fine"), 0644))
	// Unreadable entry: a directory matching the glob
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b.md"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("# Never reached"), 0644))

	results, err := p.IngestDirectory(context.Background(), dir, "")
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Fine", results[0].Title)
}

func TestDryRunCreatesNothing(t *testing.T) {
	p, store := newTestPipeline(t)

	preview := p.DryRun("# Planning\n\nShip on 2025-03-01. Tracked in PROJ-9.")
	assert.Equal(t, "Planning", preview.Title)
	require.Len(t, preview.Dates, 1)
	assert.False(t, preview.Dates[0].IsRelative)
	require.Len(t, preview.Entities, 1)
	assert.Equal(t, []string{"jira_ticket:PROJ-9"}, preview.Tags)
	assert.Greater(t, preview.Confidence.FinalScore, 0.0)

	docs, err := store.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"heading", "# Heading line\nbody", "Heading line"},
		{"heading after blank lines", "\n\n# Late heading", "Late heading"},
		{"first non-blank line", "\n\nplain first line\nsecond", "plain first line"},
		{"empty", "", "Untitled"},
		{"whitespace only", " \n\t\n", "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveTitle(tt.text))
		})
	}
}
