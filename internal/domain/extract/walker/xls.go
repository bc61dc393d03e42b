package walker

import (
	"fmt"

	"github.com/shakinm/xlsReader/xls"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/sniffer"
)

// Legacy .xls workbooks still show up in the older export years.
func (w *Walker) walkXLS(path string, year int) (*Result, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	res := newResult()
	lastValid := sniffer.EmptyColumnMap()

	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			res.SheetsFailed++
			w.logger.Warn("failed to open sheet", "file", path, "sheet", i, "error", err)
			continue
		}

		// The BIFF reader has no streaming row API; materialize the
		// sheet (.xls caps at 65536 rows) and reuse the slice iterator.
		xlsRows := sheet.GetRows()
		rows := make([][]normalizer.Cell, 0, len(xlsRows))
		for _, xlsRow := range xlsRows {
			var cols []string
			for _, col := range xlsRow.GetCols() {
				cols = append(cols, col.GetString())
			}
			rows = append(rows, normalizer.FromStrings(cols))
		}

		updated, err := w.walkSheet(&sliceIterator{rows: rows}, lastValid, year, res)
		if err != nil {
			res.SheetsFailed++
			w.logger.Warn("failed to read sheet", "file", path, "sheet", i, "error", err)
			continue
		}
		lastValid = updated
		res.SheetsRead++
	}
	return res, nil
}

type sliceIterator struct {
	rows [][]normalizer.Cell
	next int
	row  []normalizer.Cell
}

func (it *sliceIterator) Next() bool {
	for it.next < len(it.rows) {
		it.row = it.rows[it.next]
		it.next++
		if it.row != nil {
			return true
		}
	}
	return false
}

func (it *sliceIterator) Row() ([]normalizer.Cell, error) {
	return it.row, nil
}
