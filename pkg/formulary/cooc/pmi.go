package cooc

import "math"

// Calculator scores pair informativeness via pointwise mutual information.
// Used as a diagnostic over raw co-occurrence counts; the detection engine
// itself thresholds on raw counts.
type Calculator struct {
	epsilon float64 // smoothing constant
}

// NewCalculator creates a PMI calculator with the given epsilon.
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	return &Calculator{epsilon: epsilon}
}

// PMI calculates the pointwise mutual information between two terms
//
// PMI(a,b) = log((N_ab + ε) * N / ((N_a + ε)(N_b + ε)))
//
// Where:
//   - N_ab = co-occurrence count of the ordered pair
//   - N_a, N_b = occurrence counts of each term
//   - N = collection size in tokens
//   - ε = smoothing constant (default 1.0)
func (c *Calculator) PMI(nAB, nA, nB, n int) float64 {
	if n == 0 {
		return 0
	}

	numerator := (float64(nAB) + c.epsilon) * float64(n)
	denominator := (float64(nA) + c.epsilon) * (float64(nB) + c.epsilon)

	if denominator == 0 {
		return 0
	}

	return math.Log(numerator / denominator)
}

// NPMI calculates normalized PMI (range: -1 to 1)
// NPMI(a,b) = PMI(a,b) / -log(P(a,b))
func (c *Calculator) NPMI(nAB, nA, nB, n int) float64 {
	if n == 0 || nAB == 0 {
		return 0
	}

	pmi := c.PMI(nAB, nA, nB, n)
	pAB := (float64(nAB) + c.epsilon) / float64(n)
	logPAB := math.Log(pAB)

	if logPAB == 0 {
		return 0
	}

	return pmi / -logPAB
}
