// Command migrator moves Treinta ledger exports into the normalized
// subscription schema, or dumps them as a portable history file.
//
// Modes:
//
//	load    parse every workbook under the data directory and persist it
//	export  parse every workbook and write a JSON/CSV history dump
//	dedup   collapse duplicate transactions left by repeated loads
//	reset   clear migrated data ahead of a fresh load
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/estratosfera/treinta-migrator/internal/domain/migrate"
	"github.com/estratosfera/treinta-migrator/pkg/config"
)

func main() {
	mode := flag.String("mode", "load", "run mode: load, export, dedup or reset")
	dataDir := flag.String("data-dir", "", "override source data directory")
	output := flag.String("output", "", "override export output file")
	format := flag.String("format", "", "override export format (json or csv)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Source.DataDir = *dataDir
	}
	if *output != "" {
		cfg.Export.OutputFile = *output
	}
	if *format != "" {
		cfg.Export.Format = *format
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cfg, logger, *mode); err != nil {
		logger.Error("migration failed", slog.String("mode", *mode), slog.Any("error", err))
		os.Exit(1)
	}
}

func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, mode string) error {
	withDB := mode != "export"

	deps, err := InitDependencies(ctx, cfg, logger, withDB)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	switch mode {
	case "load":
		summary, err := deps.Migrator.Load(ctx)
		if err != nil {
			return err
		}
		logSummary(logger, summary)
	case "export":
		summary, err := deps.Migrator.Export(ctx, cfg.Export)
		if err != nil {
			return err
		}
		logSummary(logger, summary)
	case "dedup":
		if _, err := deps.Migrator.Deduplicate(ctx); err != nil {
			return err
		}
	case "reset":
		if err := deps.Migrator.Reset(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

func logSummary(logger *slog.Logger, s migrate.Summary) {
	logger.Info("run complete",
		slog.Int("files_processed", s.FilesProcessed),
		slog.Int("files_failed", s.FilesFailed),
		slog.Int("rows_imported", s.RowsImported),
		slog.Int("rows_skipped", s.RowsSkipped),
		slog.Int("sheets_failed", s.SheetsFailed),
	)
}
