package mrs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/coil"
	"github.com/tphakala/go-mrs/internal/peak"
	"github.com/tphakala/go-mrs/internal/spectral"
)

// Spectra holds the windowed spectra of the water-suppressed transients.
type Spectra struct {
	// PPM is the descending chemical-shift axis of the window.
	PPM []float64
	// Window locates PPM within the full transform.
	Window spectral.Range
	// Transients gives the acquisition index of each row.
	Transients []int
	// Partition records which transients served as water reference.
	Partition acquisition.Partition
	// Weights are the coil weights.
	Weights []complex128
	// NAAShift is the ppm offset applied by NAA alignment.
	NAAShift float64
	// Combined is the coil-combined water-suppressed time series the
	// spectra were derived from.
	Combined *Series

	// Per transient, windowed: off-resonance, on-resonance, on-off, on+off.
	Echo1, Echo2, Diff, Sum [][]complex128
}

// Mean averages rows bin by bin and keeps the real part.
func Mean(rows [][]complex128) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i, v := range row {
			out[i] += real(v)
		}
	}
	floats.Scale(1/float64(len(rows)), out)
	return out
}

// CreatineFit is the Lorentzian fit to the creatine line of echo1.
type CreatineFit struct {
	Batch *peak.Batch
	// Params averages the kept fits.
	Params []float64
	// AUC integrates the mean lineshape over the ppm window.
	AUC float64
	// Kept lists the acquisition indices of the kept transients.
	Kept []int

	rows []int
}

// GABAFit is the Gaussian fit to the GABA line of the difference spectra.
type GABAFit struct {
	Batch  *peak.Batch
	Params []float64
	AUC    float64
	Kept   []int
}

// Result gathers the outputs of [Analyze].
type Result struct {
	Spectra       *Spectra
	Creatine      *CreatineFit
	GABA          *GABAFit
	Concentration float64
}

// DeriveSpectra separates the water reference, combines coils and returns
// the windowed spectra of the water-suppressed transients. The acquisition
// must have exactly two resonances.
func DeriveSpectra(a *Acquisition, cfg *Config) (*Spectra, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()

	if a.Resonances != editedResonances {
		return nil, fmt.Errorf("%w: edited analysis needs %d resonances, got %d",
			ErrShape, editedResonances, a.Resonances)
	}

	water, suppressed, part, err := acquisition.Separate(a, cfg.WaterTransients)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("separated transients", "water", len(part.Water), "suppressed", len(part.Suppressed))

	combined, err := coil.Combine(water, suppressed, cfg.ops())
	if err != nil {
		return nil, err
	}
	log.V(1).Info("combined coils", "coils", len(combined.Weights))

	signal := combined.Suppressed
	if cfg.SubtractWater {
		signal = subtractWater(combined.Water, signal)
	}

	spec, err := spectral.Analyze(signal, cfg.spectralConfig())
	if err != nil {
		return nil, err
	}

	ppm := spectral.FreqToPPM(spec.FreqHz, cfg.Reference)
	win, err := spectral.WindowPPM(ppm, cfg.MinPPM, cfg.MaxPPM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	log.V(1).Info("derived spectra", "bins", spec.Bins, "window", win.Len())

	out := &Spectra{
		PPM:        append([]float64(nil), ppm[win.Start:win.Stop]...),
		Window:     win,
		Transients: part.Suppressed,
		Partition:  part,
		Weights:    combined.Weights,
		Combined:   signal,
		Echo1:      make([][]complex128, spec.Transients),
		Echo2:      make([][]complex128, spec.Transients),
		Diff:       make([][]complex128, spec.Transients),
		Sum:        make([][]complex128, spec.Transients),
	}
	for tr := range spec.Transients {
		off := spec.Row(tr, offResonance)[win.Start:win.Stop]
		on := spec.Row(tr, onResonance)[win.Start:win.Stop]

		out.Echo1[tr] = append([]complex128(nil), off...)
		out.Echo2[tr] = append([]complex128(nil), on...)
		out.Diff[tr] = make([]complex128, len(on))
		out.Sum[tr] = make([]complex128, len(on))
		for i := range on {
			out.Diff[tr][i] = on[i] - off[i]
			out.Sum[tr][i] = on[i] + off[i]
		}
	}

	if cfg.AlignNAA {
		out.alignNAA()
		log.V(1).Info("aligned NAA", "shift", out.NAAShift)
	}
	return out, nil
}

// alignNAA shifts the ppm axis so the minimum of the mean difference
// spectrum lands on the NAA line.
func (s *Spectra) alignNAA() {
	diff := Mean(s.Diff)
	if len(diff) == 0 {
		return
	}
	shift := naaPPM - s.PPM[floats.MinIdx(diff)]
	floats.AddConst(shift, s.PPM)
	s.NAAShift += shift
}

// subtractWater removes from every suppressed row the mean water reference
// of the same resonance, scaled to cancel the row's zero-frequency bin.
func subtractWater(water, suppressed *acquisition.Series) *acquisition.Series {
	out := suppressed.Clone()
	ref := make([]complex128, water.Time)
	for r := range water.Resonances {
		clear(ref)
		for tr := range water.Transients {
			for i, v := range water.Row(tr, r) {
				ref[i] += v
			}
		}
		var refSum complex128
		for _, v := range ref {
			refSum += v
		}
		if refSum == 0 {
			continue
		}

		for tr := range out.Transients {
			row := out.Row(tr, r)
			var rowSum complex128
			for _, v := range row {
				rowSum += v
			}
			scale := rowSum / refSum
			for i := range row {
				row[i] -= scale * ref[i]
			}
		}
	}
	return out
}

// FitCreatine fits a Lorentzian to the creatine line of every echo1
// spectrum and integrates the mean fit.
func FitCreatine(s *Spectra, cfg *Config) (*CreatineFit, error) {
	log := cfg.logger()

	b, err := peak.FitBatch(peak.Lorentzian, realRows(s.Echo1), s.PPM, cfg.CreatineBounds,
		cfg.fitOptions(s.Transients))
	if err != nil {
		return nil, fmt.Errorf("creatine: %w", err)
	}
	logBatch(cfg, "creatine", b)

	params := b.MeanParams()
	fit := &CreatineFit{
		Batch:  b,
		Params: params,
		AUC:    peak.Integrate(peak.Lorentzian, s.PPM, params),
		Kept:   b.Kept(),
		rows:   b.KeptIndices(),
	}
	log.V(1).Info("fitted creatine", "freq", params[peak.LorentzFreq], "auc", fit.AUC)
	return fit, nil
}

// FitGABA fits a Gaussian to the GABA line of the difference spectra of the
// transients kept by the creatine fit. Each difference spectrum is first
// rotated by the negative of that transient's creatine phase.
func FitGABA(s *Spectra, cr *CreatineFit, cfg *Config) (*GABAFit, error) {
	log := cfg.logger()

	rows := cr.rows
	if rows == nil {
		rows = rowsOf(s, cr.Kept)
	}

	ops := cfg.ops()
	spectra := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		phase := cr.Batch.Fits[row].Params[peak.LorentzPhase]
		spectra[i] = spectral.Real(spectral.PhaseCorrectZero(ops, s.Diff[row], -phase))
		labels[i] = s.Transients[row]
	}

	b, err := peak.FitBatch(peak.Gaussian, spectra, s.PPM, cfg.GABABounds, cfg.fitOptions(labels))
	if err != nil {
		return nil, fmt.Errorf("GABA: %w", err)
	}
	logBatch(cfg, "GABA", b)

	params := b.MeanParams()
	fit := &GABAFit{
		Batch:  b,
		Params: params,
		AUC:    peak.Integrate(peak.Gaussian, s.PPM, params),
		Kept:   b.Kept(),
	}
	log.V(1).Info("fitted GABA", "freq", params[peak.GaussFreq], "auc", fit.AUC)
	return fit, nil
}

// EstimateConcentration returns the GABA concentration estimate
// GABA_AUC / Cr_AUC · 1.5 · 9.0. A zero creatine area yields NaN.
func EstimateConcentration(gaba *GABAFit, cr *CreatineFit) float64 {
	if cr.AUC == 0 {
		return math.NaN()
	}
	return gaba.AUC / cr.AUC * ConcentrationScale
}

// Analyze runs the full edited pipeline.
func Analyze(a *Acquisition, cfg *Config) (*Result, error) {
	s, err := DeriveSpectra(a, cfg)
	if err != nil {
		return nil, err
	}
	cr, err := FitCreatine(s, cfg)
	if err != nil {
		return nil, err
	}
	gaba, err := FitGABA(s, cr, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{
		Spectra:       s,
		Creatine:      cr,
		GABA:          gaba,
		Concentration: EstimateConcentration(gaba, cr),
	}, nil
}

func realRows(rows [][]complex128) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = spectral.Real(row)
	}
	return out
}

// rowsOf maps acquisition transient indices back to row positions.
func rowsOf(s *Spectra, transients []int) []int {
	pos := make(map[int]int, len(s.Transients))
	for i, tr := range s.Transients {
		pos[tr] = i
	}
	rows := make([]int, 0, len(transients))
	for _, tr := range transients {
		if i, ok := pos[tr]; ok {
			rows = append(rows, i)
		}
	}
	return rows
}

func logBatch(cfg *Config, name string, b *peak.Batch) {
	cfg.logger().Info("fitted transients", "peak", name,
		"kept", len(b.Kept()),
		"failed", b.Count(peak.StatusFitFailed),
		"outliers", b.Count(peak.StatusOutlier))
}
