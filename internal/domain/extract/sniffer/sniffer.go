// Package sniffer locates variable-position header rows inside Treinta
// worksheets and maps fuzzy header text onto column roles.
package sniffer

import (
	"errors"
	"strings"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
)

// ScanWindow is how many leading rows are probed for a header.
const ScanWindow = 20

var ErrNoHeaderFound = errors.New("no header row found in scan window")

// ColumnMap maps logical roles to zero-based column positions, -1 when the
// role is absent from the sheet.
type ColumnMap struct {
	Date   int
	Client int
	Amount int
	Type   int
	Desc   int
}

// EmptyColumnMap returns a map with every role unassigned.
func EmptyColumnMap() ColumnMap {
	return ColumnMap{Date: -1, Client: -1, Amount: -1, Type: -1, Desc: -1}
}

// Valid reports whether the map can drive extraction. Date and amount are
// the minimum; everything else has row-level defaults.
func (m ColumnMap) Valid() bool {
	return m.Date >= 0 && m.Amount >= 0
}

// FindHeader scans buffered rows for the first row whose concatenated
// non-empty text carries both the capitalized "Fecha" and "Tipo" markers,
// the exact casing Treinta writes its headers with. Matching is
// case-sensitive so lowercase running text in a notes row never reads as a
// header. Returns the row index within the buffer.
func FindHeader(rows [][]normalizer.Cell) (int, error) {
	limit := len(rows)
	if limit > ScanWindow {
		limit = ScanWindow
	}
	for i := 0; i < limit; i++ {
		text := normalizer.JoinRow(rows[i])
		if strings.Contains(text, "Fecha") && strings.Contains(text, "Tipo") {
			return i, nil
		}
	}
	return 0, ErrNoHeaderFound
}

// MapColumns builds a ColumnMap from a recognized header row using
// substring rules. A seller column ("vendedor") is deliberately left
// unmapped so transactions are attributed to the customer, not the seller.
func MapColumns(header []normalizer.Cell) ColumnMap {
	m := EmptyColumnMap()
	for i, cell := range header {
		if cell.IsEmpty() {
			continue
		}
		text := strings.ToLower(cell.Text)
		switch {
		case strings.Contains(text, "fecha"):
			if m.Date < 0 {
				m.Date = i
			}
		case strings.Contains(text, "vendedor"):
			// seller column, never a client role
		case strings.Contains(text, "contacto") || strings.Contains(text, "cliente"):
			if m.Client < 0 {
				m.Client = i
			}
		case strings.Contains(text, "valor") || strings.Contains(text, "monto"):
			if m.Amount < 0 {
				m.Amount = i
			}
		case strings.Contains(text, "tipo"):
			if m.Type < 0 {
				m.Type = i
			}
		case strings.Contains(text, "descripci"):
			if m.Desc < 0 {
				m.Desc = i
			}
		}
	}
	return m
}
