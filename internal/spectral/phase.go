package spectral

import (
	"math/cmplx"

	"github.com/tphakala/go-mrs/internal/simdops"
)

// Real returns the real parts of values.
func Real(values []complex128) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = real(v)
	}
	return out
}

// PhaseCorrectZero returns spec rotated by e^{iφ}.
func PhaseCorrectZero(ops *simdops.Ops, spec []complex128, phi float64) []complex128 {
	out := make([]complex128, len(spec))
	ops.ScaleComplex(out, spec, cmplx.Rect(1, phi))
	return out
}

// PhaseCorrectFirst returns spec[i]·e^{-i·k·freq[i]}.
func PhaseCorrectFirst(ops *simdops.Ops, spec []complex128, freq []float64, k float64) []complex128 {
	ramp := make([]complex128, len(spec))
	for i := range ramp {
		ramp[i] = cmplx.Rect(1, -k*freq[i])
	}
	out := make([]complex128, len(spec))
	ops.MulComplex(out, spec, ramp)
	return out
}
