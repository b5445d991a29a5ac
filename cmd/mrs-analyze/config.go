package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	mrs "github.com/tphakala/go-mrs"
)

// Sample formats of the raw input.
const (
	formatComplex64  = "complex64"
	formatComplex128 = "complex128"
)

// flagKeys maps processing flags onto configuration keys.
var flagKeys = map[string]string{
	"sampling-rate":      "sampling_rate",
	"hz-per-ppm":         "reference.hzperppm",
	"center-ppm":         "reference.centerppm",
	"water":              "water_transients",
	"filter-order":       "filter_order",
	"filter-low-hz":      "filter_low_hz",
	"filter-high-hz":     "filter_high_hz",
	"filter-attenuation": "filter_attenuation",
	"line-broadening":    "line_broadening",
	"zero-fill":          "zero_fill",
	"nfft":               "nfft",
	"overlap":            "overlap",
	"min-ppm":            "min_ppm",
	"max-ppm":            "max_ppm",
	"reject-outliers":    "reject_outliers",
	"z-threshold":        "z_threshold",
	"subtract-water":     "subtract_water",
	"align-naa":          "align_naa",
	"parallel":           "enable_parallel",
	"phase0":             "zero_order_phase",
	"phase1":             "first_order_phase",
}

// options are the flags that do not belong to mrs.Config.
type options struct {
	shape       []int
	format      string
	fidWAV      string
	singleVoxel bool
}

func newFlagSet() *flag.FlagSet {
	d := mrs.DefaultConfig()
	fs := flag.NewFlagSet("mrs-analyze", flag.ContinueOnError)

	fs.String("config", "", "Configuration file (YAML, JSON or TOML)")
	fs.IntSlice("shape", nil, "Array shape: time,transients,resonances,coils (or time,transients,coils)")
	fs.String("format", formatComplex64, "Sample format: complex64 or complex128")
	fs.String("fid-wav", "", "Write the mean off/on FIDs as a stereo 24-bit WAV file")
	fs.Bool("single-voxel", false, "Analyze an unedited single-voxel acquisition")
	fs.BoolP("verbose", "v", false, "Verbose output")

	fs.Float64("sampling-rate", d.SamplingRate, "Sampling rate in Hz")
	fs.Float64("hz-per-ppm", d.Reference.HzPerPPM, "Spectrometer frequency in Hz per ppm")
	fs.Float64("center-ppm", d.Reference.CenterPPM, "Chemical shift of the transmitter frequency")
	fs.IntSlice("water", d.WaterTransients, "Water-unsuppressed transient indices")
	fs.Int("filter-order", d.FilterOrder, "FIR order (0 disables)")
	fs.Float64("filter-low-hz", d.FilterLowHz, "Lower filter band edge in Hz (0 for none)")
	fs.Float64("filter-high-hz", d.FilterHighHz, "Upper filter band edge in Hz (0 derives it from the ppm window)")
	fs.Float64("filter-attenuation", d.FilterAttenuation, "FIR stopband attenuation in dB")
	fs.Float64("line-broadening", d.LineBroadening, "Exponential line broadening in Hz")
	fs.Int("zero-fill", d.ZeroFill, "Zeros appended before the transform")
	fs.Int("nfft", d.NFFT, "Minimum transform length")
	fs.Int("overlap", d.Overlap, "Window overlap in samples")
	fs.Float64("min-ppm", d.MinPPM, "Lower edge of the represented spectrum")
	fs.Float64("max-ppm", d.MaxPPM, "Upper edge of the represented spectrum")
	fs.Bool("reject-outliers", d.RejectOutliers, "Reject transients by z-score")
	fs.Float64("z-threshold", d.ZThreshold, "Outlier z-score threshold")
	fs.Bool("subtract-water", d.SubtractWater, "Subtract the scaled water reference")
	fs.Bool("align-naa", d.AlignNAA, "Align the NAA line to 2.0 ppm")
	fs.Bool("parallel", d.EnableParallel, "Fit transients in parallel")
	fs.Float64("phase0", d.ZeroOrderPhase, "Zero-order phase correction in radians")
	fs.Float64("phase1", d.FirstOrderPhase, "First-order phase correction in radians per Hz")

	return fs
}

// loadConfig layers defaults, the optional configuration file and
// explicitly set flags, in increasing precedence.
func loadConfig(fs *flag.FlagSet) (mrs.Config, error) {
	cfg := mrs.DefaultConfig()

	v := viper.New()
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readOptions(fs *flag.FlagSet) (options, error) {
	var o options
	var err error
	if o.shape, err = fs.GetIntSlice("shape"); err != nil {
		return o, err
	}
	if len(o.shape) != 3 && len(o.shape) != 4 {
		return o, fmt.Errorf("--shape needs 3 or 4 axes, got %d", len(o.shape))
	}
	if o.format, err = fs.GetString("format"); err != nil {
		return o, err
	}
	o.format = strings.ToLower(o.format)
	if o.format != formatComplex64 && o.format != formatComplex128 {
		return o, fmt.Errorf("unknown sample format %q", o.format)
	}
	if o.fidWAV, err = fs.GetString("fid-wav"); err != nil {
		return o, err
	}
	if o.singleVoxel, err = fs.GetBool("single-voxel"); err != nil {
		return o, err
	}
	return o, nil
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
