package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/storeopen"
	"github.com/claude/liftlog/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("file", "", "path to a workout CSV export (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without saving")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*csvPath)
	if err != nil {
		log.Error("failed to read CSV", "path", *csvPath, "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storeopen.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tr := tracker.New(store, cfg.Import.BatchSize, log)
	if err := tr.Load(ctx); err != nil {
		log.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode, nothing will be saved")
		res, err := parse(ctx, tr, string(data), log)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		printResult(log, res)
		return
	}

	res, err := tr.ImportCSV(ctx, string(data), func(p ingest.Progress) {
		log.Info("import progress", "processed", p.Processed, "total", p.Total)
	})
	if err != nil {
		log.Error("import failed", "error", err)
		if errors.Is(err, tracker.ErrImportNotSaved) {
			printResult(log, res)
		}
		os.Exit(1)
	}
	printResult(log, res)
	log.Info("import complete")
}

// parse runs the importer in the background and reports progress without
// committing anything.
func parse(ctx context.Context, tr *tracker.Tracker, data string, log *slog.Logger) (*ingest.Result, error) {
	job := tr.StartImport(ctx, data)
	for p := range job.Progress() {
		log.Info("import progress", "processed", p.Processed, "total", p.Total)
	}
	return job.Wait()
}

func printResult(log *slog.Logger, res *ingest.Result) {
	log.Info("import stats",
		"rows_total", res.RowsTotal,
		"rows_skipped", res.RowsSkipped,
		"workouts", res.ImportedCount,
		"sets", res.SetsImported,
	)
	for _, name := range res.UnmappedExerciseNames {
		log.Info("unmapped exercise", "name", name)
	}
}
