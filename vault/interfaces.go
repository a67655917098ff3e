package vault

import (
	"context"

	"github.com/poiesic/docent/core"
)

// SemanticMatch is one result of a vector similarity search.
type SemanticMatch struct {
	// ID of the matched document.
	ID string
	// Distance from the query vector; smaller is closer.
	Distance float32
}

// Vault is the document and embedding store the enrichment layer delegates
// to. It owns identity assignment, persistence, and vector indexing.
// Implementations must be thread-safe and support concurrent access.
type Vault interface {
	// CreateDocument stores a new document and assigns it an ID prefixed by
	// the type's short code. Body and tags are optional. Returns the stored
	// document with ID and CreatedAt populated.
	CreateDocument(ctx context.Context, docType, title, observedAt, body string, tags []string) (*core.Document, error)

	// ReadDocument retrieves a document by ID. Returns ErrNotFound if the
	// document does not exist or its type does not match a non-empty docType.
	ReadDocument(ctx context.Context, docType, id string) (*core.Document, error)

	// QueryAll returns every document in the vault.
	QueryAll(ctx context.Context) ([]*core.Document, error)

	// HasEmbedding reports whether any embedding is stored for the document,
	// regardless of model.
	HasEmbedding(ctx context.Context, id string) (bool, error)

	// StoreEmbedding stores a vector keyed by (document id, model name).
	// Returns ErrDimensionMismatch if the vector length does not equal the
	// vault's configured dimensionality.
	StoreEmbedding(ctx context.Context, id string, vector []float32, modelName string) error

	// EmbeddingDim returns the vault's configured embedding dimensionality.
	EmbeddingDim() int

	// SearchSemantic returns up to limit documents ranked by vector distance,
	// ascending (nearest first).
	SearchSemantic(ctx context.Context, vector []float32, limit int) ([]SemanticMatch, error)

	// Close closes the vault and releases resources.
	Close() error
}
