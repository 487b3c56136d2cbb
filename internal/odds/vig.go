package odds

import "math"

// ImpliedProbability converts a decimal price to implied probability
// Example: 2.00 → 0.50, 1.50 → 0.667
// Returns 0 for non-canonical prices.
func ImpliedProbability(price float64) float64 {
	if price < MinDecimal || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return 1.0 / price
}

// Overround returns the bookmaker margin of a market: the sum of implied
// probabilities minus 1. A fair market returns 0.
func Overround(prices ...float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range prices {
		total += ImpliedProbability(p)
	}
	return total - 1.0
}

// RemoveVig removes the vig from a market of decimal prices
// Returns true probabilities that sum to 1.0, or nil if any price is unusable.
//
// Method: Multiplicative vig removal (proportional)
// trueProb_i = implied_i / Σ implied
func RemoveVig(prices ...float64) []float64 {
	implied, total := impliedAll(prices)
	if implied == nil {
		return nil
	}

	out := make([]float64, len(implied))
	for i, p := range implied {
		out[i] = p / total
	}
	return out
}

// RemoveVigPower removes vig using the Power method
// This accounts for the favorite-longshot bias: longshots are systematically overbet.
// Finds k such that Σ p_i^k = 1, then trueProb_i = p_i^k.
// This deflates longshot probabilities more than favorites.
func RemoveVigPower(prices ...float64) []float64 {
	implied, total := impliedAll(prices)
	if implied == nil {
		return nil
	}

	// Already fair: return as-is
	if math.Abs(total-1.0) < 1e-9 {
		return implied
	}

	k := findPowerExponent(implied)

	out := make([]float64, len(implied))
	for i, p := range implied {
		out[i] = math.Pow(p, k)
	}
	return out
}

// FairOdds returns the vig-free decimal price for each outcome using
// multiplicative removal.
func FairOdds(prices ...float64) []float64 {
	probs := RemoveVig(prices...)
	if probs == nil {
		return nil
	}

	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = 1.0 / p
	}
	return out
}

// impliedAll returns implied probabilities and their sum, or nil if the
// market has fewer than two outcomes or any price is at or below 1.0.
func impliedAll(prices []float64) ([]float64, float64) {
	if len(prices) < 2 {
		return nil, 0
	}

	implied := make([]float64, len(prices))
	total := 0.0
	for i, price := range prices {
		// A 1.0 price implies certainty, which leaves nothing to normalise
		if price <= MinDecimal || math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, 0
		}
		implied[i] = 1.0 / price
		total += implied[i]
	}
	return implied, total
}

// findPowerExponent finds k such that Σ p_i^k = 1 using bisection search
// For implied probabilities (0 < p < 1), higher k reduces p^k
// So for overround markets (sum > 1), k will be > 1 to reduce the sum
// For underround markets (sum < 1), k will be < 1 to increase the sum
func findPowerExponent(probs []float64) float64 {
	const (
		tolerance = 1e-9
		maxIters  = 100
	)

	low, high := 0.01, 10.0

	for i := 0; i < maxIters; i++ {
		mid := (low + high) / 2
		currentSum := 0.0
		for _, p := range probs {
			currentSum += math.Pow(p, mid)
		}

		if math.Abs(currentSum-1.0) < tolerance {
			return mid
		}

		if currentSum > 1 {
			low = mid
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}
