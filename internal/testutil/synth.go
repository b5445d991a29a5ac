package testutil

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// Line is one damped complex exponential in a synthetic FID.
type Line struct {
	PPM       float64 // chemical shift
	Amplitude float64 // initial amplitude
	T2        float64 // decay constant in seconds
	Phase     float64 // zero-order phase in radians
}

// Synth describes a synthetic edited acquisition laid out as
// [time, transient, resonance, coil], the input convention of the pipeline.
type Synth struct {
	Time, Transients, Resonances, Coils int

	SamplingRate float64 // Hz
	HzPerPPM     float64
	CenterPPM    float64 // chemical shift of 0 Hz

	// CoilGains scales each coil's copy of the signal. Missing entries are 1.
	CoilGains []complex128

	// WaterTransients receive the Water line in addition to the metabolites.
	WaterTransients []int
	Water           Line

	// Lines appear in every transient and resonance.
	Lines []Line
	// EditedLines appear only in resonance 1 (on-resonance).
	EditedLines []Line

	Noise float64 // standard deviation of complex Gaussian noise per component
	Seed  uint64
}

// FID returns the noiseless sum of lines sampled at n points.
func (s *Synth) FID(lines ...Line) []complex128 {
	out := make([]complex128, s.Time)
	for _, l := range lines {
		hz := (l.PPM - s.CenterPPM) * s.HzPerPPM
		for n := range out {
			t := float64(n) / s.SamplingRate
			decay := math.Exp(-t / l.T2)
			out[n] += complex(l.Amplitude*decay, 0) * cmplx.Exp(complex(0, l.Phase+2*math.Pi*hz*t))
		}
	}
	return out
}

// Generate renders the acquisition as a row-major slice plus its shape.
func (s *Synth) Generate() ([]complex128, []int) {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	water := make(map[int]bool, len(s.WaterTransients))
	for _, idx := range s.WaterTransients {
		water[idx] = true
	}

	base := s.FID(s.Lines...)
	edited := s.FID(s.EditedLines...)
	waterFID := s.FID(s.Water)

	data := make([]complex128, s.Time*s.Transients*s.Resonances*s.Coils)
	for n := range s.Time {
		for tr := range s.Transients {
			for r := range s.Resonances {
				v := base[n]
				if r == 1 {
					v += edited[n]
				}
				if water[tr] {
					v += waterFID[n]
				}
				for c := range s.Coils {
					gain := complex(1, 0)
					if c < len(s.CoilGains) {
						gain = s.CoilGains[c]
					}
					sample := v * gain
					if s.Noise > 0 {
						sample += complex(rng.NormFloat64()*s.Noise, rng.NormFloat64()*s.Noise)
					}
					data[((n*s.Transients+tr)*s.Resonances+r)*s.Coils+c] = sample
				}
			}
		}
	}
	return data, []int{s.Time, s.Transients, s.Resonances, s.Coils}
}
