package ai

import "context"

// EmbeddingBackend turns text into a fixed-dimension vector for semantic
// similarity search. Implementations must be thread-safe for concurrent use.
//
// The backend set is closed and selected by explicit configuration at
// construction time: the deterministic mock backend (ai/mock) and the
// OpenAI-compatible remote backend (ai/openai).
type EmbeddingBackend interface {
	// Generate produces a vector embedding for the given text.
	// Returns an error if embedding generation fails; failures from a remote
	// provider propagate unchanged, with no retry at this layer.
	Generate(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the model identifier for metadata tracking.
	// Embeddings are stored keyed by (document id, model name).
	ModelName() string

	// Dimensions returns the length of every vector Generate produces.
	Dimensions() int
}
