// Package peak fits lineshape models to windows of real spectra, one fit
// per transient, and rejects transients whose parameters are statistical
// outliers.
package peak

import (
	"math"
)

// Kind identifies a lineshape model.
type Kind int

const (
	// KindLorentzian is a phased Lorentzian on a linear baseline.
	KindLorentzian Kind = iota
	// KindGaussian is a Gaussian on a linear baseline.
	KindGaussian
)

func (k Kind) String() string {
	switch k {
	case KindLorentzian:
		return "lorentzian"
	case KindGaussian:
		return "gaussian"
	default:
		return "unknown"
	}
}

// Lorentzian parameter indices.
const (
	LorentzFreq = iota
	LorentzWidth
	LorentzAmplitude
	LorentzPhase
	LorentzOffset
	LorentzDrift
	lorentzParams
)

// Gaussian parameter indices.
const (
	GaussFreq = iota
	GaussSigma
	GaussAmplitude
	GaussOffset
	GaussDrift
	gaussParams
)

// fwhmToSigma converts a Gaussian's full width at half maximum to σ.
const fwhmToSigma = 2.3548200450309493

// Model is a lineshape on a linear baseline.
type Model interface {
	Kind() Kind
	NumParams() int
	// Eval returns the full model, baseline included, at x.
	Eval(x float64, p []float64) float64
	// Peak returns the lineshape alone at x.
	Peak(x float64, p []float64) float64
	// Area returns the analytic integral of Peak over the real line.
	Area(p []float64) float64

	offsetIndex() int
	driftIndex() int
	// seeds returns initial parameter vectors for a window whose maximum
	// height is height at center with half width at half maximum hwhm.
	seeds(center, height, hwhm float64) [][]float64
	// canonical folds equivalent parameterizations onto one form.
	canonical(p []float64)
}

type lorentzian struct{}

type gaussian struct{}

var (
	// Lorentzian: p = [freq0, width, amplitude, phase, offset, drift].
	Lorentzian Model = lorentzian{}
	// Gaussian: p = [freq0, sigma, amplitude, offset, drift].
	Gaussian Model = gaussian{}
)

func (lorentzian) Kind() Kind       { return KindLorentzian }
func (lorentzian) NumParams() int   { return lorentzParams }
func (lorentzian) offsetIndex() int { return LorentzOffset }
func (lorentzian) driftIndex() int  { return LorentzDrift }

func (m lorentzian) Eval(x float64, p []float64) float64 {
	return p[LorentzOffset] + p[LorentzDrift]*x + m.Peak(x, p)
}

// Peak is A·(w·cos φ + d·sin φ)/(w² + d²), d = x - freq0: the absorption
// line mixed with its dispersion by the phase φ.
func (lorentzian) Peak(x float64, p []float64) float64 {
	w := p[LorentzWidth]
	d := x - p[LorentzFreq]
	sin, cos := math.Sincos(p[LorentzPhase])
	return p[LorentzAmplitude] * (w*cos + d*sin) / (w*w + d*d)
}

func (lorentzian) Area(p []float64) float64 {
	return math.Pi * p[LorentzAmplitude] * math.Cos(p[LorentzPhase])
}

func (lorentzian) seeds(center, height, hwhm float64) [][]float64 {
	phases := []float64{0, math.Pi / 2, -math.Pi / 2, math.Pi}
	out := make([][]float64, len(phases))
	for i, phi := range phases {
		out[i] = []float64{center, hwhm, height * hwhm, phi, 0, 0}
	}
	return out
}

func (lorentzian) canonical(p []float64) {
	if p[LorentzWidth] < 0 {
		p[LorentzWidth] = -p[LorentzWidth]
		p[LorentzPhase] = math.Pi - p[LorentzPhase]
	}
	if p[LorentzAmplitude] < 0 {
		p[LorentzAmplitude] = -p[LorentzAmplitude]
		p[LorentzPhase] += math.Pi
	}
	p[LorentzPhase] = math.Remainder(p[LorentzPhase], 2*math.Pi)
}

func (gaussian) Kind() Kind       { return KindGaussian }
func (gaussian) NumParams() int   { return gaussParams }
func (gaussian) offsetIndex() int { return GaussOffset }
func (gaussian) driftIndex() int  { return GaussDrift }

func (m gaussian) Eval(x float64, p []float64) float64 {
	return p[GaussOffset] + p[GaussDrift]*x + m.Peak(x, p)
}

// Peak is A·exp(-d²/(2σ²)), d = x - freq0.
func (gaussian) Peak(x float64, p []float64) float64 {
	d := x - p[GaussFreq]
	s := p[GaussSigma]
	return p[GaussAmplitude] * math.Exp(-d*d/(2*s*s))
}

func (gaussian) Area(p []float64) float64 {
	return p[GaussAmplitude] * math.Abs(p[GaussSigma]) * math.Sqrt(2*math.Pi)
}

func (gaussian) seeds(center, height, hwhm float64) [][]float64 {
	return [][]float64{{center, 2 * hwhm / fwhmToSigma, height, 0, 0}}
}

func (gaussian) canonical(p []float64) {
	p[GaussSigma] = math.Abs(p[GaussSigma])
}
