package embeddings

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/vault/badger"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Increment(25)
	tracker.Increment(25)
	tracker.Increment(50)

	elapsed := tracker.Elapsed()
	assert.Greater(t, elapsed, time.Duration(0), "elapsed time should be positive")

	output := buf.String()
	assert.Contains(t, output, "100/100", "should show completion")
	assert.Contains(t, output, "100.0%", "should show 100%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Increment(75)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "100/100", "finish should set to total")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressTracker_IncrementBeyondTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Increment(150)

	output := buf.String()
	assert.Contains(t, output, "100/100", "should cap at total")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Increment(50)
	tracker.Finish()

	assert.Empty(t, buf.String(), "should not report before Start")
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
}

func TestEmbedAllReportsProgress(t *testing.T) {
	store, err := badger.NewMemoryVault(badger.WithEmbeddingDim(8))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var buf bytes.Buffer
	gen, err := NewGenerator(store, mock.NewBackend(8), WithProgress(&buf, 1))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.CreateDocument(ctx, "document", "First", "2025-03-01T00:00:00Z", "Alpha.", nil)
	require.NoError(t, err)
	_, err = store.CreateDocument(ctx, "document", "Second", "2025-03-01T00:00:00Z", "Beta.", nil)
	require.NoError(t, err)

	embedded, err := gen.EmbedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, embedded)
	assert.Contains(t, buf.String(), "2/2")
}
