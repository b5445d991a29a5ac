package mrs

import (
	"fmt"
	"math"

	"github.com/go-logr/logr"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/peak"
	"github.com/tphakala/go-mrs/internal/simdops"
	"github.com/tphakala/go-mrs/internal/spectral"
)

// Bounds is a chemical-shift window in ppm.
type Bounds = peak.Bounds

// Reference maps frequencies in Hz to chemical shift.
type Reference = spectral.Reference

// Config holds the processing parameters.
type Config struct {
	// SamplingRate of the free induction decays in Hz.
	SamplingRate float64 `mapstructure:"sampling_rate"`

	// Reference converts Hz to ppm.
	Reference Reference `mapstructure:"reference"`

	// WaterTransients lists the transients acquired without water
	// suppression. Transient 0 is never used as signal.
	WaterTransients []int `mapstructure:"water_transients"`

	// FilterOrder of the zero-phase FIR (FilterOrder+1 taps). Zero disables
	// filtering.
	FilterOrder int `mapstructure:"filter_order"`

	// FilterLowHz and FilterHighHz are the filter band edges in Hz, measured
	// from the transmitter frequency. A zero FilterHighHz places the upper
	// edge at twice the largest offset of MinPPM or MaxPPM from
	// Reference.CenterPPM, so the represented window stays in the passband.
	// A band reaching Nyquist from DC leaves the signal unfiltered.
	FilterLowHz  float64 `mapstructure:"filter_low_hz"`
	FilterHighHz float64 `mapstructure:"filter_high_hz"`

	// FilterAttenuation is the stopband attenuation in dB.
	FilterAttenuation float64 `mapstructure:"filter_attenuation"`

	// LineBroadening is the exponential apodization rate in Hz.
	LineBroadening float64 `mapstructure:"line_broadening"`

	// ZeroFill is the number of zeros appended before the transform.
	ZeroFill int `mapstructure:"zero_fill"`

	// NFFT is the minimum transform length.
	NFFT int `mapstructure:"nfft"`

	// Overlap between analysis windows, in [0, NFFT).
	Overlap int `mapstructure:"overlap"`

	// ZeroOrderPhase (rad) and FirstOrderPhase (rad/Hz) rotate every
	// spectrum by e^{i(φ0 - φ1·f)} before windowing.
	ZeroOrderPhase  float64 `mapstructure:"zero_order_phase"`
	FirstOrderPhase float64 `mapstructure:"first_order_phase"`

	// MinPPM and MaxPPM bound the represented part of the spectrum.
	MinPPM float64 `mapstructure:"min_ppm"`
	MaxPPM float64 `mapstructure:"max_ppm"`

	// CreatineBounds and GABABounds are the peak fitting windows.
	CreatineBounds Bounds `mapstructure:"creatine_bounds"`
	GABABounds     Bounds `mapstructure:"gaba_bounds"`

	// RejectOutliers enables z-score rejection at ZThreshold.
	RejectOutliers bool    `mapstructure:"reject_outliers"`
	ZThreshold     float64 `mapstructure:"z_threshold"`

	// SubtractWater removes the scaled water reference from the
	// water-suppressed signal before spectral analysis.
	SubtractWater bool `mapstructure:"subtract_water"`

	// AlignNAA shifts the ppm axis so the NAA line of the mean difference
	// spectrum sits at 2.0 ppm.
	AlignNAA bool `mapstructure:"align_naa"`

	// EnableParallel fits transients concurrently.
	EnableParallel bool `mapstructure:"enable_parallel"`

	// EnableSIMD allows the use of SIMD optimizations when available.
	// Set to false to force pure Go implementation.
	EnableSIMD bool `mapstructure:"enable_simd"`

	// Logger receives progress messages. The zero value discards them.
	Logger logr.Logger `mapstructure:"-"`
}

// DefaultConfig returns the standard parameters for a 3 T acquisition.
func DefaultConfig() Config {
	sc := spectral.DefaultConfig()
	return Config{
		SamplingRate:      sc.SamplingRate,
		Reference:         spectral.DefaultReference,
		WaterTransients:   append([]int(nil), acquisition.DefaultWaterTransients...),
		FilterOrder:       sc.FilterOrder,
		FilterAttenuation: sc.FilterAttenuation,
		LineBroadening:    sc.LineBroadening,
		ZeroFill:          sc.ZeroFill,
		NFFT:              sc.NFFT,
		Overlap:           sc.Overlap,
		MinPPM:            defaultMinPPM,
		MaxPPM:            defaultMaxPPM,
		CreatineBounds:    Bounds{Lower: defaultCreatineLow, Upper: defaultCreatineHigh},
		GABABounds:        Bounds{Lower: defaultGABALow, Upper: defaultGABAHigh},
		RejectOutliers:    true,
		ZThreshold:        peak.DefaultZThreshold,
		EnableSIMD:        true,
		Logger:            logr.Discard(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Reference.HzPerPPM <= 0 {
		return fmt.Errorf("%w: Hz per ppm must be positive", ErrInvalidConfig)
	}
	if len(c.WaterTransients) == 0 {
		return fmt.Errorf("%w: at least one water reference transient is required", ErrInvalidConfig)
	}
	if c.MinPPM >= c.MaxPPM {
		return fmt.Errorf("%w: ppm window [%g, %g] is empty", ErrInvalidConfig, c.MinPPM, c.MaxPPM)
	}
	for name, b := range map[string]Bounds{"creatine": c.CreatineBounds, "GABA": c.GABABounds} {
		if b.Lower >= b.Upper {
			return fmt.Errorf("%w: %s bounds [%g, %g] are empty", ErrInvalidConfig, name, b.Lower, b.Upper)
		}
	}
	if c.RejectOutliers && c.ZThreshold <= 0 {
		return fmt.Errorf("%w: z threshold must be positive", ErrInvalidConfig)
	}

	sc := c.spectralConfig()
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) spectralConfig() spectral.Config {
	return spectral.Config{
		SamplingRate:      c.SamplingRate,
		FilterOrder:       c.FilterOrder,
		FilterLowHz:       c.FilterLowHz,
		FilterHighHz:      c.filterHighHz(),
		FilterAttenuation: c.FilterAttenuation,
		LineBroadening:    c.LineBroadening,
		ZeroFill:          c.ZeroFill,
		NFFT:              c.NFFT,
		Overlap:           c.Overlap,
		ZeroOrderPhase:    c.ZeroOrderPhase,
		FirstOrderPhase:   c.FirstOrderPhase,
		EnableSIMD:        c.EnableSIMD,
	}
}

// filterHighHz resolves the upper filter edge.
func (c *Config) filterHighHz() float64 {
	if c.FilterHighHz != 0 {
		return c.FilterHighHz
	}
	offset := math.Max(math.Abs(c.MinPPM-c.Reference.CenterPPM), math.Abs(c.MaxPPM-c.Reference.CenterPPM))
	return filterEdgeMargin * offset * c.Reference.HzPerPPM
}

// FilterBand returns the FIR band edges in Hz that Analyze applies. A
// high edge at or above Nyquist leaves the upper side unfiltered.
func (c *Config) FilterBand() (low, high float64) {
	return c.FilterLowHz, c.filterHighHz()
}

func (c *Config) ops() *simdops.Ops {
	return simdops.For(c.EnableSIMD)
}

func (c *Config) fitOptions(labels []int) peak.Options {
	return peak.Options{
		RejectOutliers: c.RejectOutliers,
		ZThreshold:     c.ZThreshold,
		Parallel:       c.EnableParallel,
		Labels:         labels,
	}
}

func (c *Config) logger() logr.Logger {
	if c.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return c.Logger
}
