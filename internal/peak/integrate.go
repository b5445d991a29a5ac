package peak

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// Integrate returns the trapezoidal integral of the lineshape of m, without
// its baseline, sampled on ppm. The axis may be in any order. An axis with
// fewer than two samples has no defined area and yields NaN.
func Integrate(m Model, ppm, params []float64) float64 {
	if len(ppm) < 2 {
		return math.NaN()
	}

	x := append([]float64(nil), ppm...)
	sort.Float64s(x)

	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = m.Peak(v, params)
	}
	return integrate.Trapezoidal(x, y)
}
