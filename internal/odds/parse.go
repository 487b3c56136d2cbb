package odds

import (
	"encoding/json"
	"strconv"
	"strings"

	"sports-odds-display/internal/mathutil"
)

// Thresholds for classifying bare numbers that carry no sign, decimal point or slash.
// A bare 150 is read as moneyline +150, a bare 3 as decimal 3.00.
const (
	BareMoneylineAbove = 100.0
	BareDecimalMin     = 1.0
	BareDecimalMax     = 10.0
)

// Resolution is the outcome of resolving a raw odds value.
type Resolution struct {
	Decimal  float64  // Canonical decimal price (>= 1.0)
	Detected Notation // Notation the input was read as; empty on fallback
	Fallback bool     // True when the input was unusable and 1.0 was substituted
}

func fallback() Resolution {
	return Resolution{Decimal: MinDecimal, Fallback: true}
}

// Parse resolves odds of unknown notation to a canonical decimal price.
// Never fails: unrecognised input yields 1.0.
func Parse(raw string) float64 {
	return Resolve(raw).Decimal
}

// Resolve reads a raw odds string using these rules, first match wins:
//   - blank → 1.0
//   - contains "." → decimal literal
//   - contains "/" → fractional "num/den"
//   - leading "+" or "-" followed only by digits → moneyline
//   - bare number above 100 → moneyline
//   - bare number in [1, 10] → decimal
//   - any other bare number → moneyline
func Resolve(raw string) Resolution {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback()
	}

	switch {
	case strings.Contains(s, "."):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback()
		}
		return canonical(f, NotationDecimal)

	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return fallback()
		}
		num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return fallback()
		}
		den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || den == 0 {
			return fallback()
		}
		return canonical(FractionalToDecimal(num, den), NotationFractional)
	}

	sign := s[0]
	digits := s
	if sign == '+' || sign == '-' {
		digits = s[1:]
	}
	if !isDigits(digits) {
		return fallback()
	}

	magnitude, err := strconv.ParseFloat(digits, 64)
	if err != nil || !mathutil.IsFinite(magnitude) {
		return fallback()
	}

	switch {
	case sign == '+':
		return canonical(MoneylineToDecimal(magnitude), NotationMoneyline)
	case sign == '-':
		return canonical(MoneylineToDecimal(-magnitude), NotationMoneyline)
	case magnitude > BareMoneylineAbove:
		return canonical(MoneylineToDecimal(magnitude), NotationMoneyline)
	case magnitude >= BareDecimalMin && magnitude <= BareDecimalMax:
		return canonical(magnitude, NotationDecimal)
	default:
		return canonical(MoneylineToDecimal(magnitude), NotationMoneyline)
	}
}

// isDigits reports whether s is a non-empty run of ASCII digits. Exponents,
// hex floats, signs and spaces are all rejected.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// canonical applies the >= 1.0 guard to a branch result.
func canonical(price float64, detected Notation) Resolution {
	if !mathutil.IsFinite(price) || price < MinDecimal {
		return fallback()
	}
	return Resolution{Decimal: price, Detected: detected}
}

// ParseValue resolves odds supplied as a string or a bare number.
// Numbers are written out the way they would appear in a feed and then
// parsed, so 150 and "150" resolve identically.
func ParseValue(v any) float64 {
	return ResolveValue(v).Decimal
}

// ResolveValue is Resolve for a string or numeric value.
func ResolveValue(v any) Resolution {
	switch x := v.(type) {
	case string:
		return Resolve(x)
	case json.Number:
		return Resolve(x.String())
	case float64:
		return Resolve(formatFloat(x))
	case float32:
		return Resolve(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case int:
		return Resolve(strconv.Itoa(x))
	case int32:
		return Resolve(strconv.FormatInt(int64(x), 10))
	case int64:
		return Resolve(strconv.FormatInt(x, 10))
	case uint:
		return Resolve(strconv.FormatUint(uint64(x), 10))
	case uint32:
		return Resolve(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return Resolve(strconv.FormatUint(x, 10))
	}
	return fallback()
}

func formatFloat(f float64) string {
	if !mathutil.IsFinite(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
