// Package normalizer coerces raw worksheet cell values into typed values
// and canonical client names.
package normalizer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidAmount = errors.New("cell is not a parseable amount")
	ErrInvalidDate   = errors.New("cell is not a parseable date")
)

// Kind tags the variant carried by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is a tagged variant for one worksheet cell. Text always carries the
// original rendering so row concatenation reproduces the source row.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

// Date layouts tried for string cells, day-first forms before ISO.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// Excel date serials for roughly 1995..2050; numeric cells outside this
// window are treated as plain numbers.
const (
	minDateSerial = 34700
	maxDateSerial = 55153
)

// FromString builds a Cell from the string rendering produced by the
// workbook readers. Detection order: empty, number, date, text.
func FromString(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: KindEmpty}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: KindNumber, Text: raw, Number: n}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Cell{Kind: KindDate, Text: raw, Time: t}
		}
	}
	return Cell{Kind: KindText, Text: raw}
}

// FromStrings converts a raw row into Cells.
func FromStrings(raw []string) []Cell {
	cells := make([]Cell, len(raw))
	for i, v := range raw {
		cells[i] = FromString(v)
	}
	return cells
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

// String returns the original cell rendering.
func (c Cell) String() string { return c.Text }

// JoinRow concatenates the non-empty cells of a row into one string, the
// form used for keyword scans and fallback extraction.
func JoinRow(cells []Cell) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.IsEmpty() {
			continue
		}
		parts = append(parts, strings.TrimSpace(c.Text))
	}
	return strings.Join(parts, " ")
}

// ParseDate coerces a cell into a calendar date. Date cells pass through,
// numeric cells inside the Excel serial window are converted, and text
// cells are parsed day-first.
func ParseDate(c Cell) (time.Time, error) {
	switch c.Kind {
	case KindDate:
		return c.Time, nil
	case KindNumber:
		if c.Number >= minDateSerial && c.Number <= maxDateSerial {
			t, err := excelize.ExcelDateToTime(c.Number, false)
			if err == nil {
				return t, nil
			}
		}
		return time.Time{}, ErrInvalidDate
	case KindText:
		trimmed := strings.TrimSpace(c.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, nil
			}
		}
		return time.Time{}, ErrInvalidDate
	default:
		return time.Time{}, ErrInvalidDate
	}
}

// ParseDayFirst parses a date string preferring day-first layouts. dayFirst
// false restricts parsing to the ISO form, matching the fallback pattern's
// two date alternatives.
func ParseDayFirst(s string, dayFirst bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if dayFirst {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}
