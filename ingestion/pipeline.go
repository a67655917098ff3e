package ingestion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/docent/confidence"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/embeddings"
	"github.com/poiesic/docent/extraction"
	"github.com/poiesic/docent/vault"
)

const (
	defaultSource   = "import"
	defaultDocType  = "document"
	defaultPattern  = "*.md"
	maxDerivedTitle = 80
)

// Pipeline orchestrates text enrichment and document creation. Each call is
// a self-contained transaction against the vault; the pipeline holds no
// state between calls.
type Pipeline struct {
	vault    vault.Vault
	dates    *extraction.DateExtractor
	entities *extraction.EntityExtractor
	scorer   *confidence.Scorer
	embedder *embeddings.Generator
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithEmbedder enables embedding of documents immediately after creation.
// Without it, ingested documents are stored unembedded.
func WithEmbedder(g *embeddings.Generator) Option {
	return func(p *Pipeline) error {
		p.embedder = g
		return nil
	}
}

// WithDateExtractor overrides the default date extractor, typically to pin
// the reference time in tests.
func WithDateExtractor(e *extraction.DateExtractor) Option {
	return func(p *Pipeline) error {
		if e != nil {
			p.dates = e
		}
		return nil
	}
}

// WithScorer overrides the default confidence scorer.
func WithScorer(s *confidence.Scorer) Option {
	return func(p *Pipeline) error {
		if s != nil {
			p.scorer = s
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given vault.
func NewPipeline(v vault.Vault, opts ...Option) (*Pipeline, error) {
	if v == nil {
		return nil, ErrVaultRequired
	}

	p := &Pipeline{
		vault:    v,
		dates:    extraction.NewDateExtractor(),
		entities: extraction.NewEntityExtractor(),
		scorer:   confidence.NewScorer(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// TextOption adjusts a single IngestText call.
type TextOption func(*textOptions)

type textOptions struct {
	title      string
	observedAt string
	source     string
}

// WithTitle sets an explicit title, bypassing derivation from the text.
func WithTitle(title string) TextOption {
	return func(o *textOptions) { o.title = title }
}

// WithObservedAt sets an explicit observed-at instant, bypassing date
// extraction precedence.
func WithObservedAt(observedAt string) TextOption {
	return func(o *textOptions) { o.observedAt = observedAt }
}

// WithSource sets the source label used for scoring. Default is "import".
func WithSource(source string) TextOption {
	return func(o *textOptions) { o.source = source }
}

// IngestText enriches a text and commits it to the vault as a document.
//
// Title falls back to the first level-1 heading, then the first non-blank
// line truncated to 80 characters, then "Untitled". Observed-at precedence
// is explicit option, then the earliest-starting extracted date, then the
// current instant. Entities become "<kind>:<value>" tags, de-duplicated
// preserving first-seen order.
func (p *Pipeline) IngestText(ctx context.Context, text string, opts ...TextOption) (*core.IngestResult, error) {
	o := &textOptions{source: defaultSource}
	for _, opt := range opts {
		opt(o)
	}

	title := o.title
	if title == "" {
		title = deriveTitle(text)
	}

	dates := p.dates.Extract(text)
	entities := p.entities.Extract(text)
	tags := entitiesToTags(entities)

	observedAt := o.observedAt
	if observedAt == "" {
		if len(dates) > 0 {
			observedAt = dates[0].Value.UTC().Format(time.RFC3339)
		} else {
			observedAt = time.Now().UTC().Format(time.RFC3339)
		}
	}

	// Link presence is not checked in this path
	breakdown := p.scorer.Score(confidence.Input{
		Source:        o.source,
		Precision:     "day",
		HasBody:       strings.TrimSpace(text) != "",
		HasTags:       len(tags) > 0,
		HasLinks:      false,
		HasObservedAt: true,
	})

	doc, err := p.vault.CreateDocument(ctx, defaultDocType, title, observedAt, text, tags)
	if err != nil {
		return nil, err
	}

	embedded := false
	if p.embedder != nil {
		if err := p.embedder.EmbedDocument(ctx, doc.ID); err != nil {
			return nil, err
		}
		embedded = true
	}

	p.logger.Info("ingested text", "id", doc.ID, "title", title,
		"dates", len(dates), "entities", len(entities), "confidence", breakdown.FinalScore)

	return &core.IngestResult{
		DocID:             doc.ID,
		Title:             title,
		ObservedAt:        observedAt,
		Confidence:        breakdown.FinalScore,
		ExtractedDates:    len(dates),
		ExtractedEntities: len(entities),
		Embedded:          embedded,
	}, nil
}

// IngestFile reads a file and ingests its contents as text.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*core.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.IngestText(ctx, string(data))
}

// IngestDirectory ingests every file in dir matching pattern, in
// lexicographic order. An empty pattern means "*.md". The first failing
// file aborts the remaining batch; results for files already ingested are
// returned alongside the error.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir, pattern string) ([]*core.IngestResult, error) {
	if pattern == "" {
		pattern = defaultPattern
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	results := make([]*core.IngestResult, 0, len(paths))
	for _, path := range paths {
		result, err := p.IngestFile(ctx, path)
		if err != nil {
			p.logger.Error("directory ingestion aborted", "path", path, "err", err)
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Preview is the outcome of a dry run: everything IngestText would derive,
// without the document having been created.
type Preview struct {
	Title      string
	Dates      []core.ExtractedDate
	Entities   []core.ExtractedEntity
	Tags       []string
	Confidence core.ScoreBreakdown
}

// DryRun performs extraction and scoring exactly as IngestText would, but
// issues no vault call.
func (p *Pipeline) DryRun(text string, opts ...TextOption) *Preview {
	o := &textOptions{source: defaultSource}
	for _, opt := range opts {
		opt(o)
	}

	title := o.title
	if title == "" {
		title = deriveTitle(text)
	}

	dates := p.dates.Extract(text)
	entities := p.entities.Extract(text)
	tags := entitiesToTags(entities)

	breakdown := p.scorer.Score(confidence.Input{
		Source:        o.source,
		Precision:     "day",
		HasBody:       strings.TrimSpace(text) != "",
		HasTags:       len(tags) > 0,
		HasLinks:      false,
		HasObservedAt: true,
	})

	return &Preview{
		Title:      title,
		Dates:      dates,
		Entities:   entities,
		Tags:       tags,
		Confidence: breakdown,
	}
}

// deriveTitle picks a title from the text: the first level-1 heading, else
// the first non-blank line capped at 80 characters, else "Untitled".
func deriveTitle(text string) string {
	var firstLine string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if heading, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(heading)
		}
		if firstLine == "" {
			firstLine = trimmed
		}
	}
	if firstLine == "" {
		return "Untitled"
	}
	if runes := []rune(firstLine); len(runes) > maxDerivedTitle {
		firstLine = string(runes[:maxDerivedTitle])
	}
	return firstLine
}

// entitiesToTags maps entities to "<kind>:<value>" tags, de-duplicated
// preserving first-seen order.
func entitiesToTags(entities []core.ExtractedEntity) []string {
	var tags []string
	seen := make(map[string]bool, len(entities))
	for _, ent := range entities {
		tag := string(ent.Kind) + ":" + ent.Value
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
