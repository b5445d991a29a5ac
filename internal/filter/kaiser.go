// Package filter designs and applies the zero-phase FIR filter that
// removes out-of-band content from free induction decays before spectral
// analysis.
package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-mrs/internal/mathutil"
)

const (
	// Filter design constants
	minFilterOrder = 2
	maxFilterOrder = 8190

	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincZeroThreshold = 1e-10

	// DefaultAttenuation is the stopband attenuation used when none is given.
	DefaultAttenuation = 60.0
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
//	w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β),  α = (N-1)/2
//
// The window is symmetric (w[i] = w[length-1-i]) and peaks at 1 in the center.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	if length == 1 {
		return []float64{1}
	}

	window := make([]float64, length)
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}
	return window
}

// Params describes a linear-phase FIR filter by its band edges.
//
// Low and High are fractions of the Nyquist frequency with
// 0 <= Low < High <= 1. Low == 0 designs a low-pass at High, High == 1 a
// high-pass at Low, and anything else a band-pass between the two.
type Params struct {
	// Order is the filter order. The filter has Order+1 taps; odd orders are
	// rounded up so the kernel has a center tap.
	Order int

	// Low is the lower -6 dB band edge.
	Low float64

	// High is the upper -6 dB band edge.
	High float64

	// Attenuation is the stopband attenuation in dB. Zero selects
	// DefaultAttenuation.
	Attenuation float64
}

// Validate checks if filter parameters are valid.
func (p *Params) Validate() error {
	if p.Order < minFilterOrder || p.Order > maxFilterOrder {
		return fmt.Errorf("filter order %d outside [%d, %d]", p.Order, minFilterOrder, maxFilterOrder)
	}
	if p.Low < 0 || p.High > 1 || p.Low >= p.High {
		return fmt.Errorf("invalid band: [%f, %f] (must satisfy 0 <= low < high <= 1)", p.Low, p.High)
	}
	if p.Low == 0 && p.High == 1 {
		return fmt.Errorf("band [0, 1] passes every frequency")
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", p.Attenuation)
	}
	return nil
}

// NumTaps returns the kernel length, always odd.
func (p *Params) NumTaps() int {
	taps := p.Order + 1
	if taps%2 == 0 {
		taps++
	}
	return taps
}

// Design designs a Kaiser-windowed sinc kernel for the band in p. The
// low-pass part has unity gain at DC; high- and band-pass kernels are built
// by spectral subtraction of low-pass prototypes and have zero DC gain. The
// kernel is symmetric, so its delay is exactly (NumTaps-1)/2 samples.
func Design(p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	att := p.Attenuation
	if att == 0 {
		att = DefaultAttenuation
	}

	taps := p.NumTaps()
	window := KaiserWindow(taps, mathutil.KaiserBeta(att))

	switch {
	case p.Low == 0:
		return lowPass(window, p.High), nil
	case p.High == 1:
		kernel := lowPass(window, p.Low)
		floats.Scale(-1, kernel)
		kernel[taps/2]++
		return kernel, nil
	default:
		kernel := lowPass(window, p.High)
		floats.Sub(kernel, lowPass(window, p.Low))
		return kernel, nil
	}
}

// lowPass returns the windowed sinc with cutoff (fraction of Nyquist)
// normalized to unity DC gain.
func lowPass(window []float64, cutoff float64) []float64 {
	taps := len(window)

	// cutoff relative to the sampling rate
	fc := cutoff / windowNormalizationFactor
	center := float64(taps-1) / windowNormalizationFactor

	kernel := make([]float64, taps)
	for n := range taps {
		x := float64(n) - center
		// sin(2πfc·x) / (πx), with limit 2fc at x = 0
		var sinc float64
		if math.Abs(x) < sincZeroThreshold {
			sinc = windowNormalizationFactor * fc
		} else {
			sinc = math.Sin(windowNormalizationFactor*math.Pi*fc*x) / (math.Pi * x)
		}
		kernel[n] = sinc * window[n]
	}

	if sum := floats.Sum(kernel); math.Abs(sum) > sincZeroThreshold {
		floats.Scale(1/sum, kernel)
	}
	return kernel
}

// Response holds the frequency response of a filter.
type Response struct {
	// Frequencies as a fraction of Nyquist, 0 to 1.
	Frequencies []float64
	// Magnitude response at each frequency (linear scale).
	Magnitude []float64
}

// FrequencyResponse evaluates |H(e^jω)| of the kernel at numPoints
// frequencies from DC to Nyquist (512 when numPoints <= 0).
func FrequencyResponse(kernel []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = 512
	}

	r := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}
	for k := range numPoints {
		f := float64(k) / float64(max(numPoints-1, 1))
		r.Frequencies[k] = f

		omega := math.Pi * f
		var re, im float64
		for n, h := range kernel {
			re += h * math.Cos(omega*float64(n))
			im -= h * math.Sin(omega*float64(n))
		}
		r.Magnitude[k] = math.Hypot(re, im)
	}
	return r
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
