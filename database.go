// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docent

import (
	"log/slog"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/ai/openai"
	"github.com/poiesic/docent/embeddings"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/vault"
	"github.com/poiesic/docent/vault/badger"
)

// Database bundles a vault with an embedding backend and hands out the
// enrichment components built on top of them.
type Database struct {
	store   *badger.Store
	backend ai.EmbeddingBackend
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	useMock  bool
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithMockEmbeddings selects the deterministic mock embedding backend
// instead of the remote provider. Useful for tests and offline runs.
func WithMockEmbeddings() DatabaseOption {
	return func(o *databaseOptions) {
		o.useMock = true
	}
}

// WithInMemory opens the vault in memory, without touching disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens a vault at filePath and wires up the configured
// embedding backend. The vault's embedding dimensionality follows the
// AI configuration.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	storeOpts := []badger.Option{
		badger.WithEmbeddingDim(options.aiConfig.Dimensions),
		badger.WithLogger(options.logger),
	}
	if options.inMemory {
		storeOpts = append(storeOpts, badger.WithInMemory())
	}

	store, err := badger.Open(filePath, storeOpts...)
	if err != nil {
		return nil, err
	}

	var backend ai.EmbeddingBackend
	if options.useMock {
		backend = mock.NewBackend(options.aiConfig.Dimensions)
	} else {
		backend, err = openai.NewBackend(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Database{
		store:   store,
		backend: backend,
		logger:  options.logger,
	}, nil
}

// Close closes the underlying vault.
func (db *Database) Close() error {
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing vault", "err", err)
		return err
	}
	return nil
}

// Vault returns the underlying document store.
func (db *Database) Vault() vault.Vault {
	return db.store
}

// EmbeddingBackend returns the configured embedding backend.
func (db *Database) EmbeddingBackend() ai.EmbeddingBackend {
	return db.backend
}

// NewEmbeddingGenerator creates an embedding generator over this database's
// vault and backend.
func (db *Database) NewEmbeddingGenerator(opts ...embeddings.Option) (*embeddings.Generator, error) {
	return embeddings.NewGenerator(db.store, db.backend, opts...)
}

// NewIngestionPipeline creates an ingestion pipeline over this database's
// vault.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.store, opts...)
}

// NewCSVAdapter creates a CSV adapter over this database's vault.
func (db *Database) NewCSVAdapter(opts ...ingestion.CSVOption) (*ingestion.CSVAdapter, error) {
	return ingestion.NewCSVAdapter(db.store, opts...)
}
