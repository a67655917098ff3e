package embeddings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/vault"
)

const defaultSearchLimit = 10

// Generator produces and stores document embeddings.
type Generator struct {
	vault            vault.Vault
	backend          ai.EmbeddingBackend
	maxTokens        int
	encoder          *tiktoken.Tiktoken
	progress         io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithMaxTokens caps the embedding input at the given number of tokens,
// measured with the cl100k_base encoding. Longer texts are truncated on a
// token boundary before being sent to the backend.
func WithMaxTokens(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		encoder, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return fmt.Errorf("failed to load token encoding: %w", err)
		}
		g.maxTokens = n
		g.encoder = encoder
		return nil
	}
}

// WithProgress reports bulk embedding progress to w every interval
// documents. Without it, EmbedAll runs silently.
func WithProgress(w io.Writer, interval int) Option {
	return func(g *Generator) error {
		g.progress = w
		g.progressInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger != nil {
			g.logger = logger
		}
		return nil
	}
}

// NewGenerator creates an embedding generator over the given vault and
// backend. The backend's dimensionality must match the vault's.
func NewGenerator(v vault.Vault, backend ai.EmbeddingBackend, opts ...Option) (*Generator, error) {
	if v == nil {
		return nil, fmt.Errorf("vault required")
	}
	if backend == nil {
		return nil, fmt.Errorf("embedding backend required")
	}
	if backend.Dimensions() != v.EmbeddingDim() {
		return nil, fmt.Errorf("%w: backend produces %d dimensions, vault expects %d",
			vault.ErrDimensionMismatch, backend.Dimensions(), v.EmbeddingDim())
	}

	g := &Generator{
		vault:   v,
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "embeddings")

	return g, nil
}

// EmbedDocument generates and stores an embedding for a single document.
func (g *Generator) EmbedDocument(ctx context.Context, docID string) error {
	doc, err := g.vault.ReadDocument(ctx, core.DocTypeFromID(docID), docID)
	if err != nil {
		return err
	}

	text := g.truncate(compositeText(doc))

	vec, err := g.backend.Generate(ctx, text)
	if err != nil {
		g.logger.Error("embedding generation failed", "id", docID, "err", err)
		return err
	}

	return g.vault.StoreEmbedding(ctx, docID, vec, g.backend.ModelName())
}

// EmbedAll embeds every document that does not yet have an embedding.
// Returns the number of documents embedded.
func (g *Generator) EmbedAll(ctx context.Context) (int, error) {
	docs, err := g.vault.QueryAll(ctx)
	if err != nil {
		return 0, err
	}

	var tracker *ProgressTracker
	if g.progress != nil {
		tracker = NewProgressTracker(g.progress, len(docs), g.progressInterval)
		tracker.Start()
		defer tracker.Finish()
	}

	embedded := 0
	for _, doc := range docs {
		has, err := g.vault.HasEmbedding(ctx, doc.ID)
		if err != nil {
			return embedded, err
		}
		if has {
			if tracker != nil {
				tracker.Increment(1)
			}
			continue
		}
		if err := g.EmbedDocument(ctx, doc.ID); err != nil {
			return embedded, err
		}
		embedded++
		if tracker != nil {
			tracker.Increment(1)
		}
	}

	g.logger.Info("embedding pass complete", "total", len(docs), "embedded", embedded)
	return embedded, nil
}

// Search embeds the query text and returns the nearest documents, ascending
// by cosine distance. A non-positive limit defaults to 10.
func (g *Generator) Search(ctx context.Context, query string, limit int) ([]vault.SemanticMatch, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vec, err := g.backend.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	return g.vault.SearchSemantic(ctx, vec, limit)
}

// truncate caps text at the configured token budget, when one is set.
func (g *Generator) truncate(text string) string {
	if g.encoder == nil {
		return text
	}
	tokens := g.encoder.Encode(text, nil, nil)
	if len(tokens) <= g.maxTokens {
		return text
	}
	return g.encoder.Decode(tokens[:g.maxTokens])
}

// compositeText builds the text that represents a document for embedding
// purposes: title, body, and tags folded into a single string.
func compositeText(doc *core.Document) string {
	parts := []string{"Title: " + doc.Title}
	if doc.Body != "" {
		parts = append(parts, doc.Body)
	}
	if len(doc.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(doc.Tags, ", "))
	}
	return strings.Join(parts, "\n")
}
