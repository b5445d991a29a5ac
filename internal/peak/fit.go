package peak

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	// Parameters shared by both models.
	freqIndex      = 0
	amplitudeIndex = 2

	maxFuncEvaluations = 20000
	convergeAbsolute   = 1e-12
	convergeRelative   = 1e-10
	convergeIterations = 100

	halfMaximum = 0.5
)

// Status records the outcome for one transient.
type Status int

const (
	// StatusKept marks a converged fit that passed outlier rejection.
	StatusKept Status = iota
	// StatusFitFailed marks a fit that did not converge; its parameters are NaN.
	StatusFitFailed
	// StatusOutlier marks a converged fit with a parameter z-score above threshold.
	StatusOutlier
)

func (s Status) String() string {
	switch s {
	case StatusKept:
		return "kept"
	case StatusFitFailed:
		return "fit-failed"
	case StatusOutlier:
		return "outlier"
	default:
		return "unknown"
	}
}

// Fit is the result for one spectrum.
type Fit struct {
	Kind   Kind
	Params []float64
	Status Status
	// Residual is the RMS difference between model and data in the window.
	Residual float64
}

func failedFit(m Model) Fit {
	p := make([]float64, m.NumParams())
	for i := range p {
		p[i] = math.NaN()
	}
	return Fit{Kind: m.Kind(), Params: p, Status: StatusFitFailed, Residual: math.NaN()}
}

// FitWindow fits m to the samples y at positions x.
//
// The data are normalized before minimization: x is centered on its mean
// and y is mapped onto [0, 1] by its range. Every seed from the model is
// minimized with Nelder-Mead and the lowest residual wins. The parameters
// are mapped back to the original units.
func FitWindow(m Model, x, y []float64) Fit {
	n := len(x)
	if n < m.NumParams() || len(y) != n || !allFinite(y) {
		return failedFit(m)
	}

	ymin, ymax := floats.Min(y), floats.Max(y)
	scale := ymax - ymin
	if scale == 0 {
		return failedFit(m)
	}
	xc := floats.Sum(x) / float64(n)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range x {
		xs[i] = x[i] - xc
		ys[i] = (y[i] - ymin) / scale
	}

	peakIdx := floats.MaxIdx(ys)
	seeds := m.seeds(xs[peakIdx], ys[peakIdx], halfWidth(xs, ys, ys[peakIdx]))

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i, xi := range xs {
				r := m.Eval(xi, p) - ys[i]
				sse += r * r
			}
			return sse
		},
	}

	var best *optimize.Result
	for _, seed := range seeds {
		res, err := optimize.Minimize(problem, seed, newSettings(), &optimize.NelderMead{})
		if err != nil || res == nil || failed(res.Status) || !allFinite(res.X) {
			continue
		}
		if best == nil || res.F < best.F {
			best = res
		}
	}
	if best == nil {
		return failedFit(m)
	}

	// One restart from the optimum rebuilds a simplex that may have
	// collapsed early.
	if res, err := optimize.Minimize(problem, best.X, newSettings(), &optimize.NelderMead{}); err == nil &&
		res != nil && !failed(res.Status) && allFinite(res.X) && res.F <= best.F {
		best = res
	}

	p := append([]float64(nil), best.X...)
	m.canonical(p)

	off, drift := m.offsetIndex(), m.driftIndex()
	p[freqIndex] += xc
	p[amplitudeIndex] *= scale
	p[off] = ymin + scale*(p[off]-p[drift]*xc)
	p[drift] *= scale

	var sse float64
	for i := range x {
		r := m.Eval(x[i], p) - y[i]
		sse += r * r
	}
	if !allFinite(p) || math.IsNaN(sse) {
		return failedFit(m)
	}

	return Fit{
		Kind:     m.Kind(),
		Params:   p,
		Status:   StatusKept,
		Residual: math.Sqrt(sse / float64(n)),
	}
}

func newSettings() *optimize.Settings {
	return &optimize.Settings{
		FuncEvaluations: maxFuncEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   convergeAbsolute,
			Relative:   convergeRelative,
			Iterations: convergeIterations,
		},
	}
}

func failed(s optimize.Status) bool {
	switch s {
	case optimize.Failure, optimize.IterationLimit, optimize.RuntimeLimit,
		optimize.FunctionEvaluationLimit:
		return true
	}
	return false
}

// halfWidth estimates the half width at half maximum from the number of
// samples at or above half the peak height.
func halfWidth(x, y []float64, height float64) float64 {
	spacing := math.Inf(1)
	for i := 1; i < len(x); i++ {
		if d := math.Abs(x[i] - x[i-1]); d > 0 && d < spacing {
			spacing = d
		}
	}
	if math.IsInf(spacing, 1) {
		return 1
	}

	count := 0
	for _, v := range y {
		if v >= halfMaximum*height {
			count++
		}
	}
	return math.Max(float64(count), 1) * spacing / 2
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
