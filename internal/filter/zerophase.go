package filter

import (
	"github.com/tphakala/go-mrs/internal/simdops"
)

// ZeroPhase applies a symmetric FIR kernel without shifting the signal in
// time. The input is extended at both ends by odd reflection about its end
// samples, convolved over the fully overlapping positions, and the kernel's
// delay of (len-1)/2 samples is absorbed by the padding.
type ZeroPhase struct {
	kernel []float64
	half   int
	ops    *simdops.Ops
	fftc   *FFTConvolver
}

// NewZeroPhase designs the kernel described by p. A nil ops selects the
// SIMD kernels.
func NewZeroPhase(p Params, ops *simdops.Ops) (*ZeroPhase, error) {
	kernel, err := Design(p)
	if err != nil {
		return nil, err
	}
	return newZeroPhaseKernel(kernel, ops), nil
}

func newZeroPhaseKernel(kernel []float64, ops *simdops.Ops) *ZeroPhase {
	if ops == nil {
		ops = simdops.Default()
	}
	z := &ZeroPhase{
		kernel: kernel,
		half:   (len(kernel) - 1) / 2,
		ops:    ops,
	}
	if len(kernel) >= minKernelForFFT {
		z.fftc = NewFFTConvolver(kernel, ops)
	}
	return z
}

// Kernel returns the filter coefficients.
func (z *ZeroPhase) Kernel() []float64 {
	return z.kernel
}

// Apply filters x into dst, which must have the same length. dst and x may
// be the same slice.
func (z *ZeroPhase) Apply(dst, x []float64) {
	n := len(x)
	if n == 0 {
		return
	}

	padded := make([]float64, n+2*z.half)
	copy(padded[z.half:], x)
	for j := 1; j <= z.half; j++ {
		padded[z.half-j] = 2*x[0] - x[min(j, n-1)]
		padded[z.half+n-1+j] = 2*x[n-1] - x[max(n-1-j, 0)]
	}

	if z.fftc != nil {
		z.fftc.ConvolveValid(dst[:n], padded)
		return
	}
	z.ops.ConvolveValid(dst[:n], padded, z.kernel)
}

// ApplyComplex filters the real and imaginary parts of x independently.
func (z *ZeroPhase) ApplyComplex(dst, x []complex128) {
	n := len(x)
	re := make([]float64, n)
	im := make([]float64, n)
	simdops.SplitComplex(re, im, x)
	z.Apply(re, re)
	z.Apply(im, im)
	simdops.JoinComplex(dst[:n], re, im)
}
