// Package simdops routes the vector kernels of the MRS pipeline through
// github.com/tphakala/simd, with a pure Go table for platforms or callers
// that opt out of SIMD.
//
// Callers fetch a table once with [For] and call through its function
// fields in their inner loops.
package simdops

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
)

// Ops holds the vector kernels used by the filter, coil and spectral stages.
type Ops struct {
	// ConvolveValid computes dst[i] = Σ signal[i+k]*kernel[k] for the
	// len(signal)-len(kernel)+1 fully overlapping positions.
	ConvolveValid func(dst, signal, kernel []float64)

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float64, s float64)

	// MulComplex multiplies element-wise: dst[i] = a[i] * b[i]
	MulComplex func(dst, a, b []complex128)

	// ScaleComplex multiplies by a complex scalar: dst[i] = a[i] * s
	ScaleComplex func(dst, a []complex128, s complex128)

	// AddComplex adds element-wise: dst[i] = a[i] + b[i]
	AddComplex func(dst, a, b []complex128)
}

var (
	simdOps = Ops{
		ConvolveValid: f64.ConvolveValid,
		Scale:         f64.Scale,
		MulComplex:    c128.Mul,
		ScaleComplex:  c128.Scale,
		AddComplex:    c128.Add,
	}
	genericOps = Ops{
		ConvolveValid: convolveValidGo,
		Scale:         scaleGo,
		MulComplex:    mulComplexGo,
		ScaleComplex:  scaleComplexGo,
		AddComplex:    addComplexGo,
	}
)

// For returns the SIMD kernels when enableSIMD is true and the pure Go
// kernels otherwise.
func For(enableSIMD bool) *Ops {
	if enableSIMD {
		return &simdOps
	}
	return &genericOps
}

// Default returns the SIMD kernels.
func Default() *Ops {
	return &simdOps
}

func dotProductGo(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := range n {
		sum += a[i] * b[i]
	}
	return sum
}

func convolveValidGo(dst, signal, kernel []float64) {
	n := len(signal) - len(kernel) + 1
	if n <= 0 {
		return
	}
	n = min(n, len(dst))
	for i := range n {
		dst[i] = dotProductGo(signal[i:i+len(kernel)], kernel)
	}
}

func scaleGo(dst, a []float64, s float64) {
	n := min(len(dst), len(a))
	for i := range n {
		dst[i] = a[i] * s
	}
}

func mulComplexGo(dst, a, b []complex128) {
	n := min(len(dst), len(a), len(b))
	for i := range n {
		dst[i] = a[i] * b[i]
	}
}

func scaleComplexGo(dst, a []complex128, s complex128) {
	n := min(len(dst), len(a))
	for i := range n {
		dst[i] = a[i] * s
	}
}

func addComplexGo(dst, a, b []complex128) {
	n := min(len(dst), len(a), len(b))
	for i := range n {
		dst[i] = a[i] + b[i]
	}
}

// SplitComplex writes the real and imaginary parts of z into re and im.
func SplitComplex(re, im []float64, z []complex128) {
	for i, v := range z {
		re[i] = real(v)
		im[i] = imag(v)
	}
}

// JoinComplex writes complex(re[i], im[i]) into dst.
func JoinComplex(dst []complex128, re, im []float64) {
	for i := range dst {
		dst[i] = complex(re[i], im[i])
	}
}
