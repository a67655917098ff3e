package docent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithMockEmbeddings())
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Vault())
		assert.NotNil(t, db.EmbeddingBackend())
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithMockEmbeddings())
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithMockEmbeddings())
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithMockEmbeddings())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("can create csv adapter", func(t *testing.T) {
		adapter, err := db.NewCSVAdapter()
		require.NoError(t, err)
		require.NotNil(t, adapter)
	})

	t.Run("can create embedding generator", func(t *testing.T) {
		gen, err := db.NewEmbeddingGenerator()
		require.NoError(t, err)
		require.NotNil(t, gen)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithMockEmbeddings())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	gen, err := db.NewEmbeddingGenerator()
	require.NoError(t, err)

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)

	result, err := pipeline.IngestText(ctx, "# Release notes\n\nShipped PROJ-42 on 2025-05-01.")
	require.NoError(t, err)
	assert.Equal(t, "Release notes", result.Title)
	assert.Equal(t, "2025-05-01T00:00:00Z", result.ObservedAt)

	embedded, err := gen.EmbedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)

	matches, err := gen.Search(ctx, "release notes", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, result.DocID, matches[0].ID)
}
