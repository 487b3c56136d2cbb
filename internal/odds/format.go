package odds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Notation selects how odds are written
type Notation string

const (
	NotationMoneyline  Notation = "moneyline"
	NotationDecimal    Notation = "decimal"
	NotationFractional Notation = "fractional"
)

// DefaultNotation is used when no display preference is set.
const DefaultNotation = NotationDecimal

// Notations lists every supported notation.
var Notations = []Notation{NotationMoneyline, NotationDecimal, NotationFractional}

// Valid reports whether n is one of the supported notations.
func (n Notation) Valid() bool {
	switch n {
	case NotationMoneyline, NotationDecimal, NotationFractional:
		return true
	}
	return false
}

// ParseNotation resolves a notation name, accepting common regional aliases.
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "moneyline", "american", "us":
		return NotationMoneyline, nil
	case "decimal", "eu", "european":
		return NotationDecimal, nil
	case "fractional", "fraction", "uk":
		return NotationFractional, nil
	}
	return "", fmt.Errorf("unknown odds notation %q", s)
}

// Format renders a canonical decimal price in the given notation.
// Non-canonical input renders as 1.0; an unknown notation renders as decimal.
func Format(price float64, n Notation) string {
	price = Canonical(price)

	switch n {
	case NotationMoneyline:
		ml := DecimalToMoneyline(price)
		if ml > 0 {
			return "+" + strconv.Itoa(ml)
		}
		return strconv.Itoa(ml)
	case NotationFractional:
		return DecimalToFractional(price).String()
	default:
		return decimal.NewFromFloat(price).StringFixed(2)
	}
}

// Convert moves a typed numeric value between notations without going
// through string parsing. Fractional values are carried as their decimal
// price, since a fraction is a display pair rather than a single number.
func Convert(value float64, from, to Notation) float64 {
	var price float64
	switch from {
	case NotationMoneyline:
		price = MoneylineToDecimal(value)
	default:
		price = value
	}
	price = Canonical(price)

	switch to {
	case NotationMoneyline:
		return float64(DecimalToMoneyline(price))
	default:
		return price
	}
}
