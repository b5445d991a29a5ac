// Package spectral turns coil-combined free induction decays into
// frequency-domain spectra and maps them onto the chemical-shift axis.
package spectral

import (
	"errors"
	"fmt"
)

// Default processing parameters.
const (
	DefaultFilterOrder       = 256
	DefaultFilterLowHz       = 0.0    // Hz, no lower edge
	DefaultFilterHighHz      = 1250.0 // Hz, half Nyquist at the default rate
	DefaultFilterAttenuation = 60.0
	DefaultLineBroadening    = 5.0 // Hz
	DefaultZeroFill          = 100
	DefaultNFFT              = 1024
	DefaultOverlap           = DefaultNFFT - 1
	DefaultSamplingRate      = 5000.0 // Hz
)

// ErrConfig is returned by [Config.Validate].
var ErrConfig = errors.New("invalid spectral configuration")

// Config controls [Analyze].
type Config struct {
	// SamplingRate of the time series in Hz.
	SamplingRate float64

	// FilterOrder of the zero-phase FIR. The filter has FilterOrder+1 taps.
	// Zero disables filtering.
	FilterOrder int

	// FilterLowHz and FilterHighHz are the band edges of the filter in Hz.
	// A zero FilterLowHz makes it a low-pass; a zero FilterHighHz, or one at
	// or above Nyquist, makes it a high-pass. A band spanning DC to Nyquist
	// leaves the signal unfiltered.
	FilterLowHz  float64
	FilterHighHz float64

	// FilterAttenuation is the stopband attenuation in dB.
	FilterAttenuation float64

	// LineBroadening is the exponential apodization rate in Hz.
	LineBroadening float64

	// ZeroFill is the number of zeros appended before the transform.
	ZeroFill int

	// NFFT is the minimum transform length.
	NFFT int

	// ZeroOrderPhase (rad) and FirstOrderPhase (rad/Hz) rotate every
	// spectrum by e^{i(φ0 - φ1·f)}.
	ZeroOrderPhase  float64
	FirstOrderPhase float64

	// Overlap between successive analysis windows. Only one window spans
	// the zero-filled series, so the value is validated and otherwise
	// unused.
	Overlap int

	// EnableSIMD selects the SIMD vector kernels.
	EnableSIMD bool
}

// DefaultConfig returns the standard processing parameters.
func DefaultConfig() Config {
	return Config{
		SamplingRate:      DefaultSamplingRate,
		FilterOrder:       DefaultFilterOrder,
		FilterLowHz:       DefaultFilterLowHz,
		FilterHighHz:      DefaultFilterHighHz,
		FilterAttenuation: DefaultFilterAttenuation,
		LineBroadening:    DefaultLineBroadening,
		ZeroFill:          DefaultZeroFill,
		NFFT:              DefaultNFFT,
		Overlap:           DefaultOverlap,
		EnableSIMD:        true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SamplingRate <= 0 {
		return fmt.Errorf("%w: sampling rate %g must be positive", ErrConfig, c.SamplingRate)
	}
	if c.FilterOrder < 0 {
		return fmt.Errorf("%w: filter order %d is negative", ErrConfig, c.FilterOrder)
	}
	if c.FilterOrder > 0 {
		if c.FilterLowHz < 0 || c.FilterHighHz < 0 {
			return fmt.Errorf("%w: filter band [%g, %g] Hz has a negative edge", ErrConfig, c.FilterLowHz, c.FilterHighHz)
		}
		low, high := c.filterBand()
		if low >= high {
			return fmt.Errorf("%w: filter band [%g, %g] Hz is empty below Nyquist %g Hz",
				ErrConfig, c.FilterLowHz, c.FilterHighHz, c.SamplingRate/2)
		}
	}
	if c.FilterAttenuation < 0 {
		return fmt.Errorf("%w: filter attenuation %g is negative", ErrConfig, c.FilterAttenuation)
	}
	if c.LineBroadening < 0 {
		return fmt.Errorf("%w: line broadening %g is negative", ErrConfig, c.LineBroadening)
	}
	if c.ZeroFill < 0 {
		return fmt.Errorf("%w: zero fill %d is negative", ErrConfig, c.ZeroFill)
	}
	if c.NFFT <= 0 {
		return fmt.Errorf("%w: NFFT %d must be positive", ErrConfig, c.NFFT)
	}
	if c.Overlap < 0 || c.Overlap >= c.NFFT {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrConfig, c.Overlap, c.NFFT)
	}
	return nil
}

// filters reports whether the configuration designs a filter at all.
func (c *Config) filters() bool {
	low, high := c.filterBand()
	return c.FilterOrder > 0 && (low > 0 || high < 1)
}

// filterBand returns the band edges as fractions of Nyquist.
func (c *Config) filterBand() (low, high float64) {
	nyquist := c.SamplingRate / 2
	low = c.FilterLowHz / nyquist
	high = 1.0
	if c.FilterHighHz > 0 && c.FilterHighHz < nyquist {
		high = c.FilterHighHz / nyquist
	}
	return low, high
}
