package filter

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-mrs/internal/simdops"
)

const (
	// Kernels at least this long are applied by FFT convolution.
	minKernelForFFT = 400

	// Smallest FFT block (power of 2)
	defaultFFTBlockSize = 512
)

// FFTConvolver performs overlap-save FFT convolution with a fixed kernel.
// Each block of fftSize input samples yields fftSize-kernelLen+1 valid
// outputs; the first kernelLen-1 outputs of a block wrap around and are
// discarded.
type FFTConvolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int
	kernelLen int
	kernelFFT []complex128
	scale     float64 // 1/fftSize, gonum's inverse is unnormalized
	ops       *simdops.Ops

	block   []float64
	spec    []complex128
	product []complex128
	seq     []float64
}

// NewFFTConvolver transforms the kernel once for reuse. It returns nil for
// an empty kernel.
func NewFFTConvolver(kernel []float64, ops *simdops.Ops) *FFTConvolver {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil
	}

	fftSize := defaultFFTBlockSize
	for fftSize < 2*kernelLen {
		fftSize *= 2
	}
	fft := fourier.NewFFT(fftSize)

	// Reverse the kernel so the circular convolution computes
	// y[n] = Σ x[n+k]·h[k], matching simdops ConvolveValid.
	padded := make([]float64, fftSize)
	for i := range kernelLen {
		padded[i] = kernel[kernelLen-1-i]
	}

	bins := fftSize/2 + 1
	return &FFTConvolver{
		fft:       fft,
		fftSize:   fftSize,
		blockSize: fftSize - kernelLen + 1,
		kernelLen: kernelLen,
		kernelFFT: fft.Coefficients(nil, padded),
		scale:     1.0 / float64(fftSize),
		ops:       ops,
		block:     make([]float64, fftSize),
		spec:      make([]complex128, bins),
		product:   make([]complex128, bins),
		seq:       make([]float64, fftSize),
	}
}

// ConvolveValid writes the len(signal)-kernelLen+1 valid outputs into dst.
func (c *FFTConvolver) ConvolveValid(dst, signal []float64) {
	outputLen := len(signal) - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	overlap := c.kernelLen - 1
	for out := 0; out < outputLen; out += c.blockSize {
		clear(c.block)
		copy(c.block, signal[out:min(out+c.fftSize, len(signal))])

		c.spec = c.fft.Coefficients(c.spec, c.block)
		c.ops.MulComplex(c.product, c.spec, c.kernelFFT)
		c.seq = c.fft.Sequence(c.seq, c.product)
		c.ops.Scale(c.seq, c.seq, c.scale)

		valid := min(c.blockSize, outputLen-out)
		copy(dst[out:out+valid], c.seq[overlap:overlap+valid])
	}
}
