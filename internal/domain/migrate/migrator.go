// Package migrate orchestrates a migration run: it discovers workbook files
// under the data directory, resolves each file's source year, extracts
// transactions, and hands them to the requested sink.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/estratosfera/treinta-migrator/internal/domain/export"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/walker"
	"github.com/estratosfera/treinta-migrator/internal/domain/load"
	"github.com/estratosfera/treinta-migrator/pkg/config"
)

// Summary aggregates one full run across all discovered files.
type Summary struct {
	FilesProcessed int
	FilesFailed    int
	RowsImported   int
	RowsSkipped    int
	SheetsFailed   int
}

// Migrator drives the end-to-end run. The loader is nil in export mode.
type Migrator struct {
	cfg    config.SourceConfig
	walker *walker.Walker
	loader *load.Loader
	repo   *load.Repository
	logger *slog.Logger
}

// New wires a migrator. repo and loader may be nil when the run never
// touches the database.
func New(cfg config.SourceConfig, w *walker.Walker, loader *load.Loader, repo *load.Repository, logger *slog.Logger) *Migrator {
	return &Migrator{cfg: cfg, walker: w, loader: loader, repo: repo, logger: logger}
}

var yearInName = regexp.MustCompile(`20\d{2}`)

// ResolveYear decides the source year for a file: the parent directory name
// when it is a four-digit year, else the first 20xx token in the file name,
// else the configured default.
func (m *Migrator) ResolveYear(path string) int {
	parent := filepath.Base(filepath.Dir(path))
	if y, err := strconv.Atoi(parent); err == nil && y >= 1000 && y <= 9999 {
		return y
	}
	if match := yearInName.FindString(filepath.Base(path)); match != "" {
		y, _ := strconv.Atoi(match)
		return y
	}
	return m.cfg.DefaultYear
}

// Discover lists workbook files under the data directory in walk order.
// Office temp files (~$ prefix) are skipped.
func (m *Migrator) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(m.cfg.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xls":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory %s: %w", m.cfg.DataDir, err)
	}
	return files, nil
}

// Load extracts every discovered file and persists it, one database
// transaction per file. A file that fails to parse or commit is recorded
// and skipped; the run continues.
func (m *Migrator) Load(ctx context.Context) (Summary, error) {
	files, err := m.Discover()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		year := m.ResolveYear(path)
		log := m.logger.With(slog.String("file", filepath.Base(path)), slog.Int("year", year))
		log.Info("processing file")

		run := load.Run{ID: uuid.New(), FileName: filepath.Base(path), SourceYear: year}

		result, err := m.walker.WalkFile(path, year)
		if err != nil {
			log.Error("failed to read workbook", slog.Any("error", err))
			summary.FilesFailed++
			msg := err.Error()
			run.Status = "FAILED"
			run.Error = &msg
			m.recordRun(ctx, run, log)
			continue
		}

		imported, err := m.loader.LoadFile(ctx, result.Transactions)
		if err != nil {
			log.Error("failed to load file", slog.Any("error", err))
			summary.FilesFailed++
			msg := err.Error()
			run.Status = "FAILED"
			run.Error = &msg
			m.recordRun(ctx, run, log)
			continue
		}

		run.Status = "COMPLETED"
		run.RowsImported = imported
		run.RowsSkipped = result.SkippedTotal()
		m.recordRun(ctx, run, log)

		summary.FilesProcessed++
		summary.RowsImported += imported
		summary.RowsSkipped += result.SkippedTotal()
		summary.SheetsFailed += result.SheetsFailed
		log.Info("file loaded",
			slog.Int("imported", imported),
			slog.Int("skipped", result.SkippedTotal()),
		)
	}

	if m.repo != nil {
		if total, err := m.repo.CountTransactions(ctx); err == nil {
			m.logger.Info("transactions in database", slog.Int64("total", total))
		}
	}
	return summary, nil
}

// Export extracts every discovered file and writes the combined history to
// the output path, JSON or CSV by configured format.
func (m *Migrator) Export(ctx context.Context, out config.ExportConfig) (Summary, error) {
	files, err := m.Discover()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	var records []export.Record
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		year := m.ResolveYear(path)
		log := m.logger.With(slog.String("file", filepath.Base(path)), slog.Int("year", year))

		result, err := m.walker.WalkFile(path, year)
		if err != nil {
			log.Error("failed to read workbook", slog.Any("error", err))
			summary.FilesFailed++
			continue
		}
		records = append(records, export.Build(result.Transactions)...)
		summary.FilesProcessed++
		summary.RowsImported += len(result.Transactions)
		summary.RowsSkipped += result.SkippedTotal()
		summary.SheetsFailed += result.SheetsFailed
	}

	f, err := os.Create(out.OutputFile)
	if err != nil {
		return summary, fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(out.Format) {
	case "csv":
		err = export.WriteCSV(f, records)
	default:
		err = export.WriteJSON(f, records)
	}
	if err != nil {
		return summary, err
	}
	m.logger.Info("history exported",
		slog.String("output", out.OutputFile),
		slog.Int("records", len(records)),
	)
	return summary, nil
}

// Deduplicate removes repeated transaction rows left by re-running a load.
func (m *Migrator) Deduplicate(ctx context.Context) (int64, error) {
	removed, err := m.repo.DeleteDuplicates(ctx)
	if err != nil {
		return 0, err
	}
	m.logger.Info("duplicates removed", slog.Int64("count", removed))
	return removed, nil
}

// Reset wipes migrated data so a load can start clean.
func (m *Migrator) Reset(ctx context.Context) error {
	if err := m.repo.Reset(ctx); err != nil {
		return err
	}
	m.logger.Info("migrated data cleared")
	return nil
}

func (m *Migrator) recordRun(ctx context.Context, run load.Run, log *slog.Logger) {
	if m.repo == nil {
		return
	}
	if err := m.repo.RecordRun(ctx, run); err != nil {
		log.Warn("failed to record migration run", slog.Any("error", err))
	}
}
