package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Backend implements ai.EmbeddingBackend over OpenAI-compatible embedding
// APIs. The model identifier and output dimensionality are fixed at
// construction; transport failures propagate unchanged to the caller with
// no retry at this layer.
type Backend struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
	logger     *slog.Logger
}

var _ ai.EmbeddingBackend = (*Backend)(nil)

// newBackend is an internal constructor that returns the concrete type.
func newBackend(config *ai.Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Backend{
		embedder:   embedder,
		model:      config.EmbeddingModel,
		dimensions: config.Dimensions,
		logger:     slog.Default().With("component", "openai-backend"),
	}, nil
}

// NewBackend creates a remote embedding backend from the provided
// configuration.
//
// Returns ai.EmbeddingBackend interface to enforce abstraction.
func NewBackend(config *ai.Config) (ai.EmbeddingBackend, error) {
	return newBackend(config)
}

// Generate produces a vector embedding via the remote embedding API.
func (b *Backend) Generate(ctx context.Context, text string) ([]float32, error) {
	b.logger.Debug("generating embedding", "model", b.model, "length", len(text))

	vectors, err := b.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		b.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		b.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return vectors[0], nil
}

// ModelName returns the configured model identifier.
func (b *Backend) ModelName() string {
	return b.model
}

// Dimensions returns the configured output dimensionality.
func (b *Backend) Dimensions() int {
	return b.dimensions
}
