package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	t.Run("blank and whitespace are empty", func(t *testing.T) {
		assert.True(t, FromString("").IsEmpty())
		assert.True(t, FromString("   ").IsEmpty())
	})

	t.Run("numeric text becomes a number", func(t *testing.T) {
		c := FromString("45000")
		assert.Equal(t, KindNumber, c.Kind)
		assert.Equal(t, 45000.0, c.Number)
		assert.Equal(t, "45000", c.Text)
	})

	t.Run("day-first date text becomes a date", func(t *testing.T) {
		c := FromString("05/01/2024")
		require.Equal(t, KindDate, c.Kind)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), c.Time)
	})

	t.Run("free text stays text", func(t *testing.T) {
		c := FromString("Juan Perez")
		assert.Equal(t, KindText, c.Kind)
		assert.Equal(t, "Juan Perez", c.Text)
	})
}

func TestJoinRow(t *testing.T) {
	row := FromStrings([]string{"pagado", "", "05/01/2024", "efectivo", "Juan Perez", "45000"})
	assert.Equal(t, "pagado 05/01/2024 efectivo Juan Perez 45000", JoinRow(row))

	assert.Equal(t, "", JoinRow(FromStrings([]string{"", "  ", ""})))
}

func TestParseDate(t *testing.T) {
	t.Run("date cell passes through", func(t *testing.T) {
		c := FromString("31/12/2023")
		d, err := ParseDate(c)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("iso text parses", func(t *testing.T) {
		d, err := ParseDate(FromString("2024-01-05"))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("serial inside window converts", func(t *testing.T) {
		// 45292 is 2024-01-01 in the 1900 date system.
		d, err := ParseDate(Cell{Kind: KindNumber, Number: 45292})
		require.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.January, d.Month())
	})

	t.Run("serial outside window is rejected", func(t *testing.T) {
		_, err := ParseDate(Cell{Kind: KindNumber, Number: 45000000})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("plain text is rejected", func(t *testing.T) {
		_, err := ParseDate(Cell{Kind: KindText, Text: "no date here"})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("empty cell is rejected", func(t *testing.T) {
		_, err := ParseDate(Cell{})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestParseDayFirst(t *testing.T) {
	t.Run("day-first form", func(t *testing.T) {
		d, err := ParseDayFirst("05/01/2024", true)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("iso only when day-first disabled", func(t *testing.T) {
		d, err := ParseDayFirst("2024-01-05", false)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

		_, err = ParseDayFirst("05/01/2024", false)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}
