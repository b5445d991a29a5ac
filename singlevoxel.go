package mrs

import (
	"fmt"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/coil"
	"github.com/tphakala/go-mrs/internal/peak"
	"github.com/tphakala/go-mrs/internal/spectral"
)

// SingleVoxelResult holds the analysis of an unedited acquisition.
type SingleVoxelResult struct {
	PPM     []float64
	Window  spectral.Range
	Weights []complex128
	// Spectra holds one windowed spectrum per transient (resonance 0).
	Spectra [][]complex128
	// Mean is the real mean spectrum.
	Mean     []float64
	Creatine *CreatineFit
}

// AnalyzeSingleVoxel processes an unedited acquisition. Every transient is
// treated as signal and as coil reference; only resonance 0 is analyzed.
// WaterTransients, SubtractWater and AlignNAA do not apply.
func AnalyzeSingleVoxel(a *Acquisition, cfg *Config) (*SingleVoxelResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()

	combined, err := coil.Combine(a, a, cfg.ops())
	if err != nil {
		return nil, err
	}

	spec, err := spectral.Analyze(combined.Suppressed, cfg.spectralConfig())
	if err != nil {
		return nil, err
	}

	ppm := spectral.FreqToPPM(spec.FreqHz, cfg.Reference)
	win, err := spectral.WindowPPM(ppm, cfg.MinPPM, cfg.MaxPPM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	out := &SingleVoxelResult{
		PPM:     append([]float64(nil), ppm[win.Start:win.Stop]...),
		Window:  win,
		Weights: combined.Weights,
		Spectra: make([][]complex128, spec.Transients),
	}
	for tr := range spec.Transients {
		out.Spectra[tr] = append([]complex128(nil), spec.Row(tr, 0)[win.Start:win.Stop]...)
	}
	out.Mean = Mean(out.Spectra)
	log.V(1).Info("derived single voxel spectra", "transients", spec.Transients, "window", win.Len())

	labels := acquisition.AllTransients(spec.Transients)
	b, err := peak.FitBatch(peak.Lorentzian, realRows(out.Spectra), out.PPM, cfg.CreatineBounds,
		cfg.fitOptions(labels))
	if err != nil {
		return nil, fmt.Errorf("creatine: %w", err)
	}
	logBatch(cfg, "creatine", b)

	params := b.MeanParams()
	out.Creatine = &CreatineFit{
		Batch:  b,
		Params: params,
		AUC:    peak.Integrate(peak.Lorentzian, out.PPM, params),
		Kept:   b.Kept(),
		rows:   b.KeptIndices(),
	}
	return out, nil
}
