// Command analyze-filter prints the design and frequency response of the
// zero-phase FIR applied to free induction decays before spectral
// analysis.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	mrs "github.com/tphakala/go-mrs"
	"github.com/tphakala/go-mrs/internal/filter"
)

const (
	responsePoints = 1024

	// Display limits
	tapsToShow = 5
)

// Fractions of Nyquist at which the response is reported.
var reportFractions = []float64{0, 0.025, 0.05, 0.075, 0.1, 0.125, 0.15, 0.2, 0.3, 0.5, 0.75, 1.0}

func main() {
	d := mrs.DefaultConfig()
	order := flag.Int("order", d.FilterOrder, "Filter order (taps = order+1)")
	lowHz := flag.Float64("low-hz", d.FilterLowHz, "Lower band edge in Hz (0 for none)")
	highHz := flag.Float64("high-hz", d.FilterHighHz, "Upper band edge in Hz (0 derives it from the ppm window)")
	attenuation := flag.Float64("attenuation", d.FilterAttenuation, "Stopband attenuation in dB")
	rate := flag.Float64("sampling-rate", d.SamplingRate, "Sampling rate in Hz")
	hzPerPPM := flag.Float64("hz-per-ppm", d.Reference.HzPerPPM, "Spectrometer frequency in Hz per ppm")
	flag.Parse()

	d.FilterLowHz, d.FilterHighHz = *lowHz, *highHz
	d.Reference.HzPerPPM = *hzPerPPM
	low, high := d.FilterBand()
	nyquist := *rate / 2

	params := filter.Params{
		Order:       *order,
		Low:         low / nyquist,
		High:        min(high/nyquist, 1),
		Attenuation: *attenuation,
	}
	if params.Low == 0 && params.High == 1 {
		fmt.Printf("Band %.1f-%.1f Hz reaches Nyquist at %.0f Hz; Analyze leaves the data unfiltered\n",
			low, high, *rate)
		return
	}

	kernel, err := filter.Design(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Analyzing FIR Filter ===")
	fmt.Printf("Filter info:\n")
	fmt.Printf("  Taps: %d\n", len(kernel))
	fmt.Printf("  Delay compensated: %d samples\n", (len(kernel)-1)/2)
	fmt.Printf("  Band: %.4f-%.4f of Nyquist (%.1f-%.1f Hz, %.3f-%.3f ppm offset)\n",
		params.Low, params.High, params.Low*nyquist, params.High*nyquist,
		params.Low*nyquist / *hzPerPPM, params.High*nyquist / *hzPerPPM)

	var dc float64
	for _, h := range kernel {
		dc += h
	}
	fmt.Printf("  DC gain: %.10f\n", dc)

	center := len(kernel) / 2
	fmt.Println("\nCenter taps:")
	for i := max(center-tapsToShow, 0); i <= min(center+tapsToShow, len(kernel)-1); i++ {
		fmt.Printf("  h[%3d] = %+.10f\n", i, kernel[i])
	}

	resp := filter.FrequencyResponse(kernel, responsePoints)
	fmt.Println("\nMagnitude response:")
	fmt.Println("  Nyquist    Hz        ppm       dB")
	for _, f := range reportFractions {
		idx := int(f * float64(responsePoints-1))
		hz := f * nyquist
		fmt.Printf("  %6.3f  %8.1f  %8.3f  %8.2f\n",
			f, hz, hz / *hzPerPPM, filter.MagnitudeDB(resp.Magnitude[idx]))
	}
}
