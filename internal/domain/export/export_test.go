package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/classifier"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
)

func tx(date time.Time, amount float64, client string) extractor.Transaction {
	kind := extractor.KindSale
	if amount < 0 {
		kind = extractor.KindExpense
	}
	return extractor.Transaction{
		Year:        date.Year(),
		Date:        date,
		Amount:      amount,
		Kind:        kind,
		Client:      client,
		Service:     classifier.Netflix,
		Description: "renovacion netflix",
	}
}

func TestFromTransaction(t *testing.T) {
	t.Run("sale maps to ingreso", func(t *testing.T) {
		r := FromTransaction(tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 45000, "Juan Perez"))
		assert.Equal(t, "Treinta", r.Source)
		assert.Equal(t, "2024-01-05", r.Date)
		assert.Equal(t, TypeIncome, r.Type)
		assert.Equal(t, 45000.0, r.Price)
		assert.Equal(t, "NETFLIX", r.Service)
		assert.Equal(t, 2024, r.Year)
	})

	t.Run("expense maps to egreso with positive price", func(t *testing.T) {
		r := FromTransaction(tx(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), -30000, "Proveedor"))
		assert.Equal(t, TypeExpense, r.Type)
		assert.Equal(t, 30000.0, r.Price)
	})

	t.Run("price label is formatted pesos", func(t *testing.T) {
		r := FromTransaction(tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 45000, "Juan"))
		assert.NotEmpty(t, r.PriceLabel)
		assert.Contains(t, r.PriceLabel, "45")
	})
}

func TestBuild(t *testing.T) {
	records := Build([]extractor.Transaction{
		tx(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 25000, "Zoe"),
		tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 45000, "Juan"),
		tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 20000, "Ana"),
	})

	require.Len(t, records, 3)
	assert.Equal(t, "Ana", records[0].ClientName)
	assert.Equal(t, "Juan", records[1].ClientName)
	assert.Equal(t, "Zoe", records[2].ClientName)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	records := Build([]extractor.Transaction{
		tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 45000, "Juan Perez"),
	})
	require.NoError(t, WriteJSON(&buf, records))

	var decoded []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Juan Perez", decoded[0].ClientName)
	assert.Contains(t, buf.String(), "  ")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	records := Build([]extractor.Transaction{
		tx(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 45000, "Juan Perez"),
		tx(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), -30000, "Proveedor"),
	})
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "client_name")
	assert.Contains(t, lines[1], "Juan Perez")
	assert.Contains(t, lines[2], "EGRESO")
}
