package mathutil

import "math"

// MaxContinuedFractionTerms bounds the expansion in Rationalize.
const MaxContinuedFractionTerms = 64

// Rationalize finds the simplest fraction h/k approximating x >= 0 using
// continued-fraction expansion. Iteration stops at the first convergent with
// |x - h/k| <= x*relTol.
// Returns (0, 1) for x <= 0 or non-finite x, and saturates at
// (math.MaxInt64, 1) when x does not fit in an int64.
func Rationalize(x, relTol float64) (int64, int64) {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, 1
	}

	// Convergent recurrences: h_n = a_n*h_{n-1} + h_{n-2}, same for k
	var (
		h1, h2 int64 = 1, 0
		k1, k2 int64 = 0, 1
	)

	rem := x
	for i := 0; i < MaxContinuedFractionTerms; i++ {
		a := math.Floor(rem)
		if a > math.MaxInt64/2 {
			if k1 == 0 {
				// Integer part alone fills int64; saturate rather than expand
				if a >= math.MaxInt64 {
					return math.MaxInt64, 1
				}
				return int64(a), 1
			}
			break
		}
		ai := int64(a)

		h := ai*h1 + h2
		k := ai*k1 + k2
		if h < 0 || k <= 0 {
			// Overflowed int64; keep the previous convergent
			break
		}
		h1, h2 = h, h1
		k1, k2 = k, k1

		if math.Abs(x-float64(h)/float64(k)) <= x*relTol {
			break
		}

		frac := rem - a
		if frac == 0 {
			break
		}
		rem = 1 / frac
	}

	if k1 == 0 {
		return 0, 1
	}
	return h1, k1
}

// ApproxEqual reports whether a and b differ by at most delta.
func ApproxEqual(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
