// Package walker iterates workbook sheets and feeds their rows through the
// extraction engine. The last valid column map is threaded across the
// sheets of one workbook so headerless continuation sheets inherit it; the
// accumulator never leaks across workbooks.
package walker

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/sniffer"
)

// Result aggregates one workbook's extraction.
type Result struct {
	Transactions []extractor.Transaction
	SheetsRead   int
	SheetsFailed int
	Skipped      map[extractor.SkipReason]int
}

func newResult() *Result {
	return &Result{Skipped: make(map[extractor.SkipReason]int)}
}

// SkippedTotal sums the skip tallies.
func (r *Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// rowIterator abstracts the two workbook backends into one row stream.
type rowIterator interface {
	Next() bool
	Row() ([]normalizer.Cell, error)
}

// Walker drives sheet iteration for one workbook at a time.
type Walker struct {
	extractor *extractor.Extractor
	logger    *slog.Logger
}

// New creates a walker.
func New(ex *extractor.Extractor, logger *slog.Logger) *Walker {
	return &Walker{extractor: ex, logger: logger}
}

// WalkFile extracts every transaction from one workbook, dispatching on the
// file extension. Sheet-level read failures are logged and skipped; only a
// workbook that cannot be opened returns an error.
func (w *Walker) WalkFile(path string, year int) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return w.walkXLSX(path, year)
	case ".xls":
		return w.walkXLS(path, year)
	default:
		return nil, fmt.Errorf("unsupported workbook format: %s", path)
	}
}

// walkSheet buffers leading rows for header sniffing, resolves the column
// map (fresh or inherited), and extracts the chained buffered+remaining
// rows. Returns the updated inheritance accumulator.
func (w *Walker) walkSheet(iter rowIterator, lastValid sniffer.ColumnMap, year int, res *Result) (sniffer.ColumnMap, error) {
	var buffer [][]normalizer.Cell
	for len(buffer) < sniffer.ScanWindow && iter.Next() {
		row, err := iter.Row()
		if err != nil {
			return lastValid, err
		}
		buffer = append(buffer, row)
	}

	colMap := sniffer.EmptyColumnMap()
	var dataRows [][]normalizer.Cell

	if headerIdx, err := sniffer.FindHeader(buffer); err == nil {
		colMap = sniffer.MapColumns(buffer[headerIdx])
		if colMap.Valid() {
			lastValid = colMap
			dataRows = buffer[headerIdx+1:]
		}
	} else if lastValid.Valid() && len(buffer) > 0 {
		colMap = lastValid
		dataRows = buffer
	}

	if !colMap.Valid() {
		// Neither a fresh nor an inherited map: the sheet yields nothing.
		return lastValid, nil
	}

	for _, row := range dataRows {
		w.consume(row, colMap, year, res)
	}
	for iter.Next() {
		row, err := iter.Row()
		if err != nil {
			return lastValid, err
		}
		w.consume(row, colMap, year, res)
	}
	return lastValid, nil
}

func (w *Walker) consume(row []normalizer.Cell, colMap sniffer.ColumnMap, year int, res *Result) {
	outcome := w.extractor.ExtractRow(row, colMap, year)
	if outcome.Skipped() {
		res.Skipped[outcome.Reason]++
		return
	}
	res.Transactions = append(res.Transactions, *outcome.Tx)
}
