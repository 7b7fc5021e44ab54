// Package series computes terms of the exponential series e^x = Σ x^k / k!.
package series

// Identity is the value of the series when no term is summed.
// The run reports it for N = 0.
const Identity = 1.0

// Term returns base^n / n!.
//
// The value is built as the product Π base/k for k in 1..n so that neither
// the power nor the factorial is materialized. Term(0, 0) is 1.
func Term(base, n int) float64 {
	if n < 0 {
		return 0
	}
	v := 1.0
	x := float64(base)
	for k := 1; k <= n; k++ {
		v *= x / float64(k)
	}
	return v
}

// Sum returns Σ Term(base, k) for k in [0, n). It is the reference value a
// distributed run over n terms must reproduce.
func Sum(base, n int) float64 {
	if n <= 0 {
		return Identity
	}
	total := 0.0
	for k := 0; k < n; k++ {
		total += Term(base, k)
	}
	return total
}
