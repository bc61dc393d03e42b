// Package extractor turns raw worksheet rows into normalized transactions.
// Two strategies run in order: structured extraction through the sheet's
// column map, then a full-row regex scan when the structured path fails or
// yields a zero amount.
package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/classifier"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/sniffer"
)

// Kind distinguishes sales from expenses.
type Kind string

const (
	KindSale    Kind = "VENTA"
	KindExpense Kind = "GASTO"
)

// MaxAmount bounds plausible line amounts; larger values are running totals
// captured by accident, not transactions.
const MaxAmount = 1e8

// Transaction is the canonical extraction output. Amount is signed: expense
// rows carry a negative magnitude.
type Transaction struct {
	Year        int
	Date        time.Time
	Amount      float64
	Kind        Kind
	Client      string
	Service     classifier.Service
	Description string
}

// SkipReason explains why a row produced no transaction.
type SkipReason string

const (
	SkipEmptyRow    SkipReason = "empty_row"
	SkipUnparseable SkipReason = "unparseable"
	SkipNoDate      SkipReason = "no_date"
	SkipVoided      SkipReason = "voided"
	SkipOutlier     SkipReason = "outlier"
	SkipZeroAmount  SkipReason = "zero_amount"
)

// Outcome is the explicit per-row result: a transaction or a skip reason.
type Outcome struct {
	Tx     *Transaction
	Reason SkipReason
}

// Skipped reports whether the row produced no transaction.
func (o Outcome) Skipped() bool { return o.Tx == nil }

func success(tx Transaction) Outcome { return Outcome{Tx: &tx} }
func skip(reason SkipReason) Outcome { return Outcome{Reason: reason} }

// Trailing pattern of the fallback path: a day-first or ISO date, an
// optional single token, free-text client, and a trailing numeric amount
// anchored at the end of the concatenated row.
var fallbackPattern = regexp.MustCompile(`(?:(\d{2}/\d{2}/\d{4})|(\d{4}-\d{2}-\d{2}))\s+(?:(?:\S+)\s+)?(.*?)\s+(\d+(?:\.\d+)?)\s*$`)

var expenseMarkers = []string{"gasto", "egreso", "compra"}
var voidMarkers = []string{"anulado", "anulada"}

// Extractor applies the two extraction strategies and business rules.
type Extractor struct {
	classify *classifier.Engine
}

// New creates an extractor backed by the given classifier.
func New(classify *classifier.Engine) *Extractor {
	return &Extractor{classify: classify}
}

// ExtractRow processes one data row under the sheet's column map.
func (e *Extractor) ExtractRow(cells []normalizer.Cell, colMap sniffer.ColumnMap, year int) Outcome {
	rowText := normalizer.JoinRow(cells)
	if rowText == "" {
		return skip(SkipEmptyRow)
	}
	lowerRow := strings.ToLower(rowText)

	if containsAny(lowerRow, voidMarkers) {
		return skip(SkipVoided)
	}

	var (
		date       time.Time
		amount     float64
		client     = "Unknown"
		typeText   string
		desc       string
		structured bool
	)

	if colMap.Valid() {
		if d, err := normalizer.ParseDate(cellAt(cells, colMap.Date)); err == nil {
			if a, err := normalizer.ParseAmount(cellAt(cells, colMap.Amount)); err == nil {
				date = d
				amount = a
				structured = true
				if text := textAt(cells, colMap.Client); text != "" {
					client = text
				}
				typeText = textAt(cells, colMap.Type)
				desc = textAt(cells, colMap.Desc)
			}
		}
	}

	// Fallback: recover the row from its concatenated text when the
	// structured path failed outright or produced a zero amount.
	if m := fallbackPattern.FindStringSubmatch(rowText); m != nil && (!structured || amount == 0) {
		dayFirst := m[1] != ""
		dateStr := m[1]
		if !dayFirst {
			dateStr = m[2]
		}
		d, err := normalizer.ParseDayFirst(dateStr, dayFirst)
		if err != nil {
			return skip(SkipUnparseable)
		}
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return skip(SkipUnparseable)
		}
		date = d
		amount = a
		client = strings.TrimSpace(m[3])
		if client == "" {
			client = "Unknown"
		}
		typeText = ""
		desc = rowText
		structured = true
	}

	if !structured {
		return skip(SkipUnparseable)
	}
	if date.IsZero() {
		return skip(SkipNoDate)
	}

	kind := KindSale
	if strings.EqualFold(typeText, "gasto") || containsAny(lowerRow, expenseMarkers) {
		kind = KindExpense
		if amount > 0 {
			amount = -amount
		}
	}

	if amount > MaxAmount || amount < -MaxAmount {
		return skip(SkipOutlier)
	}
	if amount == 0 {
		return skip(SkipZeroAmount)
	}

	service := e.classify.Classify(desc)
	if desc == "" || service == classifier.Generic {
		service = e.classify.Classify(rowText)
	}

	return success(Transaction{
		Year:        year,
		Date:        date,
		Amount:      amount,
		Kind:        kind,
		Client:      client,
		Service:     service,
		Description: desc,
	})
}

func cellAt(cells []normalizer.Cell, idx int) normalizer.Cell {
	if idx < 0 || idx >= len(cells) {
		return normalizer.Cell{}
	}
	return cells[idx]
}

func textAt(cells []normalizer.Cell, idx int) string {
	return strings.TrimSpace(cellAt(cells, idx).Text)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
