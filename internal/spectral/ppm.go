package spectral

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-mrs/internal/mathutil"
)

// Reference defines the Hz to ppm mapping of the scanner.
type Reference struct {
	// HzPerPPM is the spectrometer frequency in MHz, i.e. Hz per ppm.
	HzPerPPM float64
	// CenterPPM is the chemical shift of the transmitter frequency.
	CenterPPM float64
}

// DefaultReference is a 3 T proton acquisition centered on water.
var DefaultReference = Reference{HzPerPPM: 127.68, CenterPPM: 4.7}

// ErrWindow is returned for an empty or inverted ppm window.
var ErrWindow = errors.New("invalid ppm window")

// FreqToPPM converts frequencies in Hz to chemical shift.
func FreqToPPM(hz []float64, ref Reference) []float64 {
	ppm := make([]float64, len(hz))
	for i, f := range hz {
		ppm[i] = f/ref.HzPerPPM + ref.CenterPPM
	}
	return ppm
}

// Range is a half-open interval of bin indices.
type Range struct {
	Start, Stop int
}

// Len returns the number of bins in the range.
func (r Range) Len() int {
	return r.Stop - r.Start
}

// WindowPPM returns the bins of a descending ppm axis between hi and lo:
// Start is the bin nearest hi and Stop the bin nearest lo, exclusive. When
// the bin nearest hi lies above it, Start moves one bin down so every
// selected bin is within [lo, hi].
func WindowPPM(ppm []float64, lo, hi float64) (Range, error) {
	if lo >= hi {
		return Range{}, fmt.Errorf("%w: lower bound %g not below upper bound %g", ErrWindow, lo, hi)
	}
	r := Range{
		Start: mathutil.ArgNearest(ppm, hi),
		Stop:  mathutil.ArgNearest(ppm, lo),
	}
	if r.Start >= 0 && ppm[r.Start] > hi {
		r.Start++
	}
	if r.Len() <= 0 {
		return Range{}, fmt.Errorf("%w: [%g, %g] selects no bins", ErrWindow, lo, hi)
	}
	return r, nil
}
