package walker

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/sniffer"
)

func (w *Walker) walkXLSX(path string, year int) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	res := newResult()
	lastValid := sniffer.EmptyColumnMap()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.Rows(sheet)
		if err != nil {
			res.SheetsFailed++
			w.logger.Warn("failed to open sheet", "file", path, "sheet", sheet, "error", err)
			continue
		}

		iter := &xlsxIterator{rows: rows}
		updated, err := w.walkSheet(iter, lastValid, year, res)
		rows.Close()
		if err != nil {
			res.SheetsFailed++
			w.logger.Warn("failed to read sheet", "file", path, "sheet", sheet, "error", err)
			continue
		}
		lastValid = updated
		res.SheetsRead++
	}
	return res, nil
}

type xlsxIterator struct {
	rows *excelize.Rows
}

func (it *xlsxIterator) Next() bool { return it.rows.Next() }

func (it *xlsxIterator) Row() ([]normalizer.Cell, error) {
	cols, err := it.rows.Columns()
	if err != nil {
		return nil, err
	}
	return normalizer.FromStrings(cols), nil
}
