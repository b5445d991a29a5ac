// Package coil merges the signals of a receive-coil array into one time
// series per transient and resonance.
//
// Weights follow Wald & Wright (1997), "Theory and application of array
// coils in MR spectroscopy": each coil contributes in proportion to the
// amplitude of its water reference peak and is rotated so that the
// reference peak sits at zero phase.
package coil

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/mathutil"
	"github.com/tphakala/go-mrs/internal/simdops"
)

// ErrDegenerateSignal indicates that every coil carried zero energy at the
// reference frequency, leaving the weights undefined.
var ErrDegenerateSignal = errors.New("degenerate coil signal")

// Result holds the combined series and the weights that produced them.
type Result struct {
	// Water is the combined water-unsuppressed data.
	Water *acquisition.Series
	// Suppressed is the combined water-suppressed data.
	Suppressed *acquisition.Series
	// Weights holds one complex weight per coil.
	Weights []complex128
}

// Combine derives coil weights from the water-unsuppressed acquisition and
// applies them to both acquisitions, collapsing the coil axis. A nil ops
// selects the SIMD kernels.
func Combine(water, suppressed *acquisition.Acquisition, ops *simdops.Ops) (*Result, error) {
	if water.Coils != suppressed.Coils || water.Time != suppressed.Time || water.Resonances != suppressed.Resonances {
		return nil, fmt.Errorf("%w: water %v and suppressed %v disagree on time/resonance/coil axes",
			acquisition.ErrShape, water.Shape(), suppressed.Shape())
	}

	if ops == nil {
		ops = simdops.Default()
	}
	fft := fourier.NewCmplxFFT(water.Time)

	weights, err := Weights(water, fft)
	if err != nil {
		return nil, err
	}

	return &Result{
		Water:      apply(water, weights, fft, ops),
		Suppressed: apply(suppressed, weights, fft, ops),
		Weights:    weights,
	}, nil
}

// Weights computes one complex weight per coil from the zero-frequency bin
// of each coil's spectrum.
//
// For every (transient, resonance) cell the DC amplitudes s_i are scaled to
// unit norm across coils; the scaled amplitudes are averaged over cells and
// the DC phases are averaged as a circular mean. Cells where every coil is
// zero do not contribute. A coil with no energy receives weight 0.
func Weights(a *acquisition.Acquisition, fft *fourier.CmplxFFT) ([]complex128, error) {
	amp := make([]float64, a.Coils)
	phases := make([][]float64, a.Coils)

	series := make([]complex128, a.Time)
	coeffs := make([]complex128, a.Time)
	dc := make([]complex128, a.Coils)
	cells := 0

	for tr := range a.Transients {
		for r := range a.Resonances {
			var energy float64
			for c := range a.Coils {
				a.CoilSeries(series, tr, r, c)
				coeffs = fft.Coefficients(coeffs, series)
				dc[c] = coeffs[0]
				energy += real(dc[c])*real(dc[c]) + imag(dc[c])*imag(dc[c])
			}
			if energy == 0 {
				continue
			}

			norm := math.Sqrt(energy)
			for c, v := range dc {
				s := cmplx.Abs(v)
				amp[c] += s / norm
				if s > 0 {
					phases[c] = append(phases[c], cmplx.Phase(v))
				}
			}
			cells++
		}
	}

	if cells == 0 {
		return nil, fmt.Errorf("%w: all %d coils have zero energy at the reference frequency", ErrDegenerateSignal, a.Coils)
	}

	w := make([]complex128, a.Coils)
	for c := range w {
		mag := amp[c] / float64(cells)
		if mag == 0 {
			continue
		}
		w[c] = cmplx.Rect(mag, -mathutil.CircularMean(phases[c]))
	}
	return w, nil
}

// apply forms the weighted coil sum of every (transient, resonance) cell in
// the Fourier domain, returns to the time domain and normalizes the result.
func apply(a *acquisition.Acquisition, w []complex128, fft *fourier.CmplxFFT, ops *simdops.Ops) *acquisition.Series {
	out := acquisition.NewSeries(a.Transients, a.Resonances, a.Time)

	series := make([]complex128, a.Time)
	coeffs := make([]complex128, a.Time)
	weighted := make([]complex128, a.Time)
	acc := make([]complex128, a.Time)
	inv := complex(1/float64(a.Time), 0)

	for tr := range a.Transients {
		for r := range a.Resonances {
			clear(acc)
			for c := range a.Coils {
				if w[c] == 0 {
					continue
				}
				a.CoilSeries(series, tr, r, c)
				coeffs = fft.Coefficients(coeffs, series)
				ops.ScaleComplex(weighted, coeffs, w[c])
				ops.AddComplex(acc, acc, weighted)
			}

			// gonum's inverse transform is unnormalized
			row := out.Row(tr, r)
			fft.Sequence(row, acc)
			ops.ScaleComplex(row, row, inv)
		}
	}

	normalize(out, ops)
	return out
}

// normalize rescales s by one real positive factor so that the magnitude
// of the mean per-row sample sum equals the number of time samples. A real
// factor keeps the water-referenced phase intact.
func normalize(s *acquisition.Series, ops *simdops.Ops) {
	rows := s.Transients * s.Resonances
	if rows == 0 {
		return
	}

	var total complex128
	for _, v := range s.Data {
		total += v
	}
	mag := cmplx.Abs(total) / float64(rows)
	if mag == 0 {
		return
	}

	scale := complex(float64(s.Time)/mag, 0)
	ops.ScaleComplex(s.Data, s.Data, scale)
}
