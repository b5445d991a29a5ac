package peak

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/spectral"
)

// DefaultZThreshold is the z-score above which a fit is an outlier.
const DefaultZThreshold = 3.0

// ErrAllTransientsRejected is returned when no transient survives fitting
// and outlier rejection.
var ErrAllTransientsRejected = errors.New("all transients rejected")

// Bounds is a chemical-shift window in ppm.
type Bounds struct {
	Lower, Upper float64
}

// Options controls FitBatch.
type Options struct {
	// RejectOutliers enables z-score rejection. When false every
	// transient is kept, failed fits included.
	RejectOutliers bool

	// ZThreshold is the rejection threshold; zero selects DefaultZThreshold.
	ZThreshold float64

	// Parallel fits transients concurrently.
	Parallel bool

	// Labels names each spectrum, typically its transient index in the
	// acquisition. Nil labels spectra 0..n-1.
	Labels []int
}

// DefaultOptions enables rejection at DefaultZThreshold.
func DefaultOptions() Options {
	return Options{RejectOutliers: true, ZThreshold: DefaultZThreshold}
}

// Batch holds per-transient fits of one model over one window.
type Batch struct {
	Kind   Kind
	Window spectral.Range
	Fits   []Fit
	// Transients labels each fit.
	Transients []int

	rejection bool
}

// Kept returns the labels of the transients retained for averaging.
func (b *Batch) Kept() []int {
	out := make([]int, 0, len(b.Fits))
	for i, f := range b.Fits {
		if b.keeps(f) {
			out = append(out, b.Transients[i])
		}
	}
	return out
}

// KeptIndices returns the positions in Fits of the retained transients.
func (b *Batch) KeptIndices() []int {
	out := make([]int, 0, len(b.Fits))
	for i, f := range b.Fits {
		if b.keeps(f) {
			out = append(out, i)
		}
	}
	return out
}

// KeptFits returns the fits retained for averaging.
func (b *Batch) KeptFits() []Fit {
	out := make([]Fit, 0, len(b.Fits))
	for _, f := range b.Fits {
		if b.keeps(f) {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of fits with status s.
func (b *Batch) Count(s Status) int {
	n := 0
	for _, f := range b.Fits {
		if f.Status == s {
			n++
		}
	}
	return n
}

// MeanParams averages each parameter over the kept fits. With rejection
// disabled a failed fit makes the mean NaN.
func (b *Batch) MeanParams() []float64 {
	kept := b.KeptFits()
	if len(kept) == 0 {
		return nil
	}
	mean := make([]float64, len(kept[0].Params))
	col := make([]float64, len(kept))
	for j := range mean {
		for i, f := range kept {
			col[i] = f.Params[j]
		}
		mean[j] = stat.Mean(col, nil)
	}
	return mean
}

func (b *Batch) keeps(f Fit) bool {
	return !b.rejection || f.Status == StatusKept
}

// FitBatch fits m to every spectrum inside bounds.
//
// Spectra share the descending ppm axis. A fit that does not converge is
// tagged StatusFitFailed with NaN parameters. With rejection enabled, each
// parameter is standardized across the converged fits and any fit with
// |z| above the threshold on some parameter is tagged StatusOutlier.
func FitBatch(m Model, spectra [][]float64, ppm []float64, bounds Bounds, opts Options) (*Batch, error) {
	win, err := spectral.WindowPPM(ppm, bounds.Lower, bounds.Upper)
	if err != nil {
		return nil, err
	}
	for i, s := range spectra {
		if len(s) != len(ppm) {
			return nil, fmt.Errorf("%w: spectrum %d has %d bins, axis has %d",
				acquisition.ErrShape, i, len(s), len(ppm))
		}
	}

	labels := opts.Labels
	if labels == nil {
		labels = acquisition.AllTransients(len(spectra))
	}
	if len(labels) != len(spectra) {
		return nil, fmt.Errorf("%w: %d labels for %d spectra", acquisition.ErrShape, len(labels), len(spectra))
	}

	x := ppm[win.Start:win.Stop]
	fits := make([]Fit, len(spectra))

	// Sequential processing (default or when parallel disabled)
	if !opts.Parallel || len(spectra) <= 1 {
		for i, s := range spectra {
			fits[i] = FitWindow(m, x, s[win.Start:win.Stop])
		}
	} else {
		var wg sync.WaitGroup
		for i := range spectra {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				fits[idx] = FitWindow(m, x, spectra[idx][win.Start:win.Stop])
			}(i)
		}
		wg.Wait()
	}

	b := &Batch{
		Kind:       m.Kind(),
		Window:     win,
		Fits:       fits,
		Transients: append([]int(nil), labels...),
		rejection:  opts.RejectOutliers,
	}

	if opts.RejectOutliers {
		threshold := opts.ZThreshold
		if threshold <= 0 {
			threshold = DefaultZThreshold
		}
		RejectOutliers(fits, threshold)
	}

	if len(b.Kept()) == 0 {
		return b, fmt.Errorf("%w: %d %s fits, %d failed, %d outliers", ErrAllTransientsRejected,
			len(fits), b.Kind, b.Count(StatusFitFailed), b.Count(StatusOutlier))
	}
	return b, nil
}

// RejectOutliers tags converged fits whose z-score on any parameter exceeds
// threshold. Statistics use the population standard deviation over the
// converged fits; a parameter with zero spread yields z = 0.
func RejectOutliers(fits []Fit, threshold float64) {
	var ok []int
	for i, f := range fits {
		if f.Status == StatusKept {
			ok = append(ok, i)
		}
	}
	if len(ok) == 0 {
		return
	}

	nParams := len(fits[ok[0]].Params)
	col := make([]float64, len(ok))
	outlier := make([]bool, len(fits))
	for j := range nParams {
		for k, i := range ok {
			col[k] = fits[i].Params[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			continue
		}
		for k, i := range ok {
			if math.Abs(col[k]-mean)/std > threshold {
				outlier[i] = true
			}
		}
	}

	for i, o := range outlier {
		if o {
			fits[i].Status = StatusOutlier
		}
	}
}
