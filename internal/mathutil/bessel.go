// Package mathutil provides small numeric helpers shared by the MRS pipeline.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It is used by the Kaiser window in FIR filter design.
//
// The value is summed from the power series
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// which converges for every x; each term is derived from the previous one so
// no factorials are formed explicitly.
func BesselI0(x float64) float64 {
	half := x / halfDivisor
	q := half * half

	sum := 1.0
	term := 1.0
	for k := 1; k <= besselMaxTerms; k++ {
		term *= q / float64(k*k)
		sum += term
		if term < besselEpsilon*sum {
			break
		}
	}
	return sum
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB ≤ att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att < 21 dB: β = 0
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	} else if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// CircularMean returns the mean direction of a set of angles in radians.
// Angles are averaged as unit phasors so that values on either side of ±π
// do not cancel. An empty input or phasors summing to zero yield 0.
func CircularMean(angles []float64) float64 {
	var s, c float64
	for _, a := range angles {
		s += math.Sin(a)
		c += math.Cos(a)
	}
	if s == 0 && c == 0 {
		return 0
	}
	return math.Atan2(s, c)
}

// ArgNearest returns the index of the element of xs closest to v.
// Ties resolve to the lowest index. It returns -1 for an empty slice.
func ArgNearest(xs []float64, v float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, x := range xs {
		if d := math.Abs(x - v); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
