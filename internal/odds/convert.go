package odds

import (
	"fmt"
	"math"

	"sports-odds-display/internal/mathutil"
)

const (
	// MinDecimal is the smallest canonical decimal price (stake returned, no profit).
	MinDecimal = 1.0

	// FractionalTolerance is the relative error accepted when approximating
	// the profit part of a decimal price by a fraction.
	FractionalTolerance = 1e-6

	// MoneylineNoEdge is returned by DecimalToMoneyline for prices at or below
	// 1.0, where the favorite formula would divide by zero.
	MoneylineNoEdge = 0
)

// Fraction is a fractional (UK) price: profit Numerator per Denominator staked.
type Fraction struct {
	Numerator   int64 `json:"numerator"`
	Denominator int64 `json:"denominator"`
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// Decimal returns the canonical decimal price for the fraction.
func (f Fraction) Decimal() float64 {
	return FractionalToDecimal(f.Numerator, f.Denominator)
}

// MoneylineToDecimal converts moneyline (American) odds to decimal odds
// Example: +150 → 2.50, -200 → 1.50
// Zero is treated as no edge and returns 1.0.
func MoneylineToDecimal(moneyline float64) float64 {
	if moneyline == 0 || !mathutil.IsFinite(moneyline) {
		return MinDecimal
	}

	if moneyline > 0 {
		// Underdog: profit per 100 staked
		return moneyline/100.0 + 1.0
	}
	// Favorite: stake needed to win 100
	return 100.0/math.Abs(moneyline) + 1.0
}

// DecimalToMoneyline converts decimal odds to moneyline odds
// Example: 2.50 → +150, 1.50 → -200
// Prices at or below 1.0 have no moneyline and return MoneylineNoEdge;
// underdogs too long for an int saturate at math.MaxInt.
func DecimalToMoneyline(decimal float64) int {
	if decimal <= MinDecimal || !mathutil.IsFinite(decimal) {
		return MoneylineNoEdge
	}

	if decimal >= 2.0 {
		ml := math.Round((decimal - 1.0) * 100.0)
		if ml >= math.MaxInt {
			return math.MaxInt
		}
		return int(ml)
	}
	return int(math.Round(-100.0 / (decimal - 1.0)))
}

// DecimalToFractional converts decimal odds to the simplest fraction within
// FractionalTolerance of the profit part.
// Example: 2.50 → 3/2, 1.92 → 23/25, 1.00 → 0/1
func DecimalToFractional(decimal float64) Fraction {
	if decimal <= MinDecimal || !mathutil.IsFinite(decimal) {
		return Fraction{Numerator: 0, Denominator: 1}
	}

	num, den := mathutil.Rationalize(decimal-1.0, FractionalTolerance)
	return Fraction{Numerator: num, Denominator: den}
}

// FractionalToDecimal converts fractional odds to decimal odds.
// A zero denominator is invalid and returns 1.0.
func FractionalToDecimal(numerator, denominator int64) float64 {
	if denominator == 0 {
		return MinDecimal
	}
	return 1.0 + float64(numerator)/float64(denominator)
}

// Canonical clamps a decimal price into the canonical range: non-finite
// values and anything below 1.0 become 1.0.
func Canonical(decimal float64) float64 {
	if !mathutil.IsFinite(decimal) || decimal < MinDecimal {
		return MinDecimal
	}
	return decimal
}
