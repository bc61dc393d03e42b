// Package export renders extracted transactions as portable history files,
// JSON or CSV, without touching the database.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
	"github.com/estratosfera/treinta-migrator/pkg/money"
)

const sourceTag = "Treinta"

// Movement types in the exported history. A negative extracted amount is an
// outflow; the exported price is always the magnitude.
const (
	TypeIncome  = "INGRESO"
	TypeExpense = "EGRESO"
)

// Record is one exported history entry.
type Record struct {
	Source      string  `json:"source" csv:"source"`
	Year        int     `json:"year" csv:"year"`
	Date        string  `json:"date" csv:"date"`
	Price       float64 `json:"price" csv:"price"`
	PriceLabel  string  `json:"price_label" csv:"price_label"`
	Type        string  `json:"type" csv:"type"`
	ClientName  string  `json:"client_name" csv:"client_name"`
	Service     string  `json:"service" csv:"service"`
	Description string  `json:"description" csv:"description"`
}

// FromTransaction maps one extracted transaction to its history record.
func FromTransaction(t extractor.Transaction) Record {
	kind := TypeIncome
	if t.Amount < 0 {
		kind = TypeExpense
	}
	price := money.Abs(t.Amount)
	return Record{
		Source:      sourceTag,
		Year:        t.Year,
		Date:        t.Date.Format("2006-01-02"),
		Price:       price,
		PriceLabel:  money.Display(price),
		Type:        kind,
		ClientName:  t.Client,
		Service:     string(t.Service),
		Description: t.Description,
	}
}

// Build converts a batch and orders it by date, then client, for stable
// output across runs.
func Build(transactions []extractor.Transaction) []Record {
	records := make([]Record, 0, len(transactions))
	for _, t := range transactions {
		records = append(records, FromTransaction(t))
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].ClientName < records[j].ClientName
	})
	return records
}

// WriteJSON writes records as a pretty-printed JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return nil
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("failed to write history csv: %w", err)
	}
	return nil
}
