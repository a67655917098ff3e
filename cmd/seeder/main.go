package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docent"
	"github.com/poiesic/docent/ingestion"
)

var notes = []string{
	"# Sprint planning\n\nMet with @alice and @bob on 2025-01-06. Scope for the quarter is tracked in PROJ-101 and PROJ-102.",
	"# Incident review\n\nOutage on 2025-01-08T03:15:00Z traced to a bad deploy. Followup filed as OPS-77. Postmortem at https://wiki.example.com/postmortems/77.",
	"# Design review\n\nSarah Chen (Lead) approved the storage layout on January 10, 2025. Open question about compaction goes to ARCH-12.",
	"# Weekly sync\n\nStatus collected yesterday. @carol owns the migration, due 2/14/2025.",
	"# Vendor call\n\nSpoke with support@vendor.example last week about licensing. Contract renewal is LEGAL-5.",
	"# Roadmap notes\n\nQ2 priorities drafted 3 days ago. Marcus Webb (PM) will circulate the doc at https://docs.example.com/roadmap.",
	"# Launch checklist\n\nFreeze starts 2025-02-01. Release tracked in REL-9, comms in MKT-301.",
	"# Retro\n\nTeam retro held today. Action items assigned to @dave and @erin.",
	"# Onboarding\n\nNew hire starts next week. Buddy assignment in HR-44, laptop request in IT-210.",
	"# Architecture decision\n\nWe chose the embedded store over a server on 2025-01-20. Rationale recorded in ADR-3.",
	"# Budget review\n\nNumbers reconciled 2 weeks ago. Variance explained in FIN-18; spreadsheet at https://sheets.example.com/budget.",
	"# Customer feedback\n\nSummary from jane.doe@customer.example received 2025-01-25. Themes filed under FEED-21 and FEED-22.",
	"# Capacity planning\n\nProjection updated last month. Hardware order is PROC-7, due March 15, 2025.",
	"# Security audit\n\nFindings delivered 2025-01-28T16:00:00+01:00. Critical items are SEC-1 and SEC-2.",
	"# All-hands notes\n\nRecording at https://video.example.com/allhands. Questions routed to @pat.",
}

var (
	seedFileName = flag.String("src", "", "file of seed notes, one per line")
	dbPath       = flag.String("db", "./docent_db", "path to the vault directory")
	workers      = flag.Int("workers", 4, "concurrent ingestion workers")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestConcurrent submits each note to a worker pool. Per-note failures are
// logged, not fatal; the vault serializes concurrent writes itself.
func ingestConcurrent(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[string], poolSize int) error {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for note := range source {
		text := note
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if _, err := pipeline.IngestText(ctx, text); err != nil {
				slog.Error("failed to ingest note", "err", err)
			}
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()

	return nil
}

func main() {
	db, err := docent.NewDatabase(*dbPath, docent.WithMockEmbeddings())
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(notes)
	}

	if err := ingestConcurrent(ctx, pipeline, source, *workers); err != nil {
		panic(err)
	}

	gen, err := db.NewEmbeddingGenerator()
	if err != nil {
		panic(err)
	}

	embedded, err := gen.EmbedAll(ctx)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "embedded", embedded)
}
