package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/filter"
	"github.com/tphakala/go-mrs/internal/simdops"
)

// Spectrum holds the spectra of a combined series, indexed
// [transient, resonance, bin]. FreqHz is shared by every row and descends
// from +fs/2 to -fs/2.
type Spectrum struct {
	FreqHz     []float64
	Transients int
	Resonances int
	Bins       int
	Values     []complex128
}

// Row returns the spectrum of one (transient, resonance) pair. The
// returned slice aliases the spectrum storage.
func (s *Spectrum) Row(tr, r int) []complex128 {
	off := (tr*s.Resonances + r) * s.Bins
	return s.Values[off : off+s.Bins : off+s.Bins]
}

// TransformLength returns the FFT length used for a series of n samples.
func TransformLength(n int, cfg *Config) int {
	return max(n+cfg.ZeroFill, cfg.NFFT)
}

// Analyze filters, apodizes, zero-fills and transforms every row of s,
// then applies the configured phase correction.
func Analyze(s *acquisition.Series, cfg Config) (*Spectrum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.Time == 0 {
		return nil, fmt.Errorf("%w: empty time axis", acquisition.ErrShape)
	}

	ops := simdops.For(cfg.EnableSIMD)

	var fir *filter.ZeroPhase
	if cfg.filters() {
		low, high := cfg.filterBand()
		var err error
		fir, err = filter.NewZeroPhase(filter.Params{
			Order:       cfg.FilterOrder,
			Low:         low,
			High:        high,
			Attenuation: cfg.FilterAttenuation,
		}, ops)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}

	apod := Apodization(s.Time, cfg.SamplingRate, cfg.LineBroadening)
	n := TransformLength(s.Time, &cfg)
	fft := fourier.NewCmplxFFT(n)

	out := &Spectrum{
		FreqHz:     FrequencyAxis(n, cfg.SamplingRate),
		Transients: s.Transients,
		Resonances: s.Resonances,
		Bins:       n,
		Values:     make([]complex128, s.Transients*s.Resonances*n),
	}

	var rotation []complex128
	if cfg.ZeroOrderPhase != 0 || cfg.FirstOrderPhase != 0 {
		rotation = make([]complex128, n)
		for i := range rotation {
			rotation[i] = 1
		}
		rotation = PhaseCorrectFirst(ops, PhaseCorrectZero(ops, rotation, cfg.ZeroOrderPhase),
			out.FreqHz, cfg.FirstOrderPhase)
	}

	buf := make([]complex128, n)
	coeffs := make([]complex128, n)
	for tr := range s.Transients {
		for r := range s.Resonances {
			clear(buf)
			fid := buf[:s.Time]
			if fir != nil {
				fir.ApplyComplex(fid, s.Row(tr, r))
			} else {
				copy(fid, s.Row(tr, r))
			}
			ops.MulComplex(fid, fid, apod)

			coeffs = fft.Coefficients(coeffs, buf)
			row := out.Row(tr, r)
			shiftReverse(row, coeffs)
			if rotation != nil {
				ops.MulComplex(row, row, rotation)
			}
		}
	}
	return out, nil
}

// Apodization returns the exponential line-broadening window
// exp(-lb·t), t = i/fs, as complex values for direct multiplication.
func Apodization(n int, fs, lb float64) []complex128 {
	w := make([]complex128, n)
	for i := range w {
		w[i] = complex(math.Exp(-lb*float64(i)/fs), 0)
	}
	return w
}

// FrequencyAxis returns the bin frequencies of an n-point transform after
// centering DC and reversing, so the axis descends.
func FrequencyAxis(n int, fs float64) []float64 {
	hz := make([]float64, n)
	half := n / 2
	for i := range hz {
		j := n - 1 - i
		hz[i] = float64(j-half) * fs / float64(n)
	}
	return hz
}

// shiftReverse writes X with DC moved to the center, reversed.
func shiftReverse(dst, x []complex128) {
	n := len(x)
	half := n / 2
	for i := range dst {
		j := n - 1 - i
		dst[i] = x[(j-half+n)%n]
	}
}
