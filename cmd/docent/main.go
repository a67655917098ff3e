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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docent"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/embeddings"
	"github.com/poiesic/docent/ingestion"
)

func main() {
	app := &cli.App{
		Name:   "docent",
		Usage:  "Enrichment and ingestion layer for a document vault",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a text file or a directory of files",
				ArgsUsage: "<path>",
				Action:    ingestCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "pattern",
						Usage: "Glob pattern for directory ingestion",
						Value: "*.md",
					},
					&cli.BoolFlag{
						Name:  "embed",
						Usage: "Embed documents immediately after ingestion",
					},
					maxTokensFlag(),
				),
			},
			{
				Name:      "csv",
				Usage:     "Ingest a CSV file, one document per row",
				ArgsUsage: "<path>",
				Action:    csvCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "title-column",
						Usage: "Column to use as the document title",
					},
					&cli.StringFlag{
						Name:  "date-column",
						Usage: "Column to use as the observed-at date",
					},
					&cli.StringSliceFlag{
						Name:  "body-column",
						Usage: "Columns to render into the body (repeatable)",
					},
				),
			},
			{
				Name:      "dry-run",
				Usage:     "Preview extraction and scoring without writing anything",
				ArgsUsage: "<path>",
				Action:    dryRunCommand,
				Flags:     dbFlags(),
			},
			{
				Name:   "embed",
				Usage:  "Embed every document that does not have an embedding yet",
				Action: embedCommand,
				Flags:  append(dbFlags(), maxTokensFlag()),
			},
			{
				Name:      "search",
				Usage:     "Semantic search over embedded documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(dbFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func maxTokensFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "max-tokens",
		Usage: "Cap embedding input at this many cl100k_base tokens (0 = no cap)",
	}
}

// generatorOptions builds the embedding generator options a command selected.
func generatorOptions(c *cli.Context, opts ...embeddings.Option) []embeddings.Option {
	if n := c.Int("max-tokens"); n > 0 {
		opts = append(opts, embeddings.WithMaxTokens(n))
	}
	return opts
}

// dbFlags are the flags shared by every command that opens a vault.
func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the vault directory",
			EnvVars:  []string{"DOCENT_DB"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"DOCENT_EMBEDDING_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"DOCENT_EMBEDDING_MODEL"},
			Value:   "text-embedding-3-small",
		},
		&cli.IntFlag{
			Name:    "dimensions",
			Usage:   "Embedding dimensionality",
			EnvVars: []string{"DOCENT_DIMENSIONS"},
			Value:   1536,
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Embedding service API key",
			EnvVars: []string{"DOCENT_API_KEY"},
			Value:   "none",
		},
		&cli.BoolFlag{
			Name:  "mock-embeddings",
			Usage: "Use the deterministic mock embedding backend",
		},
	}
}

func openDatabase(c *cli.Context) (*docent.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []docent.DatabaseOption{docent.WithAIConfig(aiConfig)}
	if c.Bool("mock-embeddings") {
		opts = append(opts, docent.WithMockEmbeddings())
	}

	db, err := docent.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var pipelineOpts []ingestion.Option
	if c.Bool("embed") {
		gen, err := db.NewEmbeddingGenerator(generatorOptions(c)...)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, ingestion.WithEmbedder(gen))
	}

	pipeline, err := db.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return err
	}

	ctx := context.Background()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		results, err := pipeline.IngestDirectory(ctx, path, c.String("pattern"))
		for _, result := range results {
			printResult(result.DocID, result.Title, result.ObservedAt, result.Confidence)
		}
		if err != nil {
			return fmt.Errorf("directory ingestion failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ingested %d files\n", len(results))
		return nil
	}

	result, err := pipeline.IngestFile(ctx, path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printResult(result.DocID, result.Title, result.ObservedAt, result.Confidence)
	return nil
}

func csvCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	adapter, err := db.NewCSVAdapter(ingestion.WithColumnMapping(ingestion.ColumnMapping{
		TitleColumn: c.String("title-column"),
		DateColumn:  c.String("date-column"),
		BodyColumns: c.StringSlice("body-column"),
	}))
	if err != nil {
		return err
	}

	results, err := adapter.IngestCSV(context.Background(), path)
	for _, result := range results {
		printResult(result.DocID, result.Title, result.ObservedAt, result.Confidence)
	}
	if err != nil {
		return fmt.Errorf("csv ingestion failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Ingested %d rows\n", len(results))
	return nil
}

func dryRunCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path argument is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}

	preview := pipeline.DryRun(string(data))

	fmt.Printf("Title: %s\n", preview.Title)
	fmt.Printf("Confidence: %.3f\n", preview.Confidence.FinalScore)
	fmt.Printf("Dates (%d):\n", len(preview.Dates))
	for _, d := range preview.Dates {
		relative := ""
		if d.IsRelative {
			relative = " (relative)"
		}
		fmt.Printf("  %s -> %s%s\n", d.OriginalText, d.Value.Format("2006-01-02T15:04:05Z07:00"), relative)
	}
	fmt.Printf("Entities (%d):\n", len(preview.Entities))
	for _, e := range preview.Entities {
		fmt.Printf("  %s: %s\n", e.Kind, e.Value)
	}
	fmt.Printf("Tags: %s\n", strings.Join(preview.Tags, ", "))
	return nil
}

func embedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	gen, err := db.NewEmbeddingGenerator(generatorOptions(c, embeddings.WithProgress(os.Stderr, 10))...)
	if err != nil {
		return err
	}

	embedded, err := gen.EmbedAll(context.Background())
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Embedded %d documents\n", embedded)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	gen, err := db.NewEmbeddingGenerator()
	if err != nil {
		return err
	}

	matches, err := gen.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, match := range matches {
		fmt.Printf("%.4f  %s\n", match.Distance, match.ID)
	}
	return nil
}

func printResult(id, title, observedAt string, confidence float64) {
	fmt.Printf("%s  %q  observed=%s  confidence=%.3f\n", id, title, observedAt, confidence)
}

func setup(c *cli.Context) error {
	// A missing .env file is not an error
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
