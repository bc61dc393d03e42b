package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = []string{"$", "€", "£", "COP", "USD"}

// ParseAmount coerces a cell into a monetary value. Numeric cells pass
// through; string cells are stripped of currency symbols and separators
// before parsing.
func ParseAmount(c Cell) (float64, error) {
	switch c.Kind {
	case KindNumber:
		return c.Number, nil
	case KindText, KindDate:
		return parseAmountString(c.Text)
	default:
		return 0, ErrInvalidAmount
	}
}

func parseAmountString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(") {
		negative = true
		s = strings.TrimPrefix(s, "-")
		s = strings.Trim(s, "()")
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	v := d.InexactFloat64()
	if negative {
		v = -v
	}
	return v, nil
}

// normalizeSeparators rewrites locale separators into a plain decimal form.
// When both appear the last one is the decimal marker; a lone comma with at
// most two trailing digits is a decimal comma, otherwise a thousands mark.
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		idx := strings.LastIndex(s, ",")
		if len(s)-idx-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}
