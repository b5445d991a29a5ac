package mrs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/testutil"
)

const (
	testTime         = 256
	testTransients   = 8
	testCoils        = 4
	testSamplingRate = 2000.0
	testHzPerPPM     = 127.68
	testCenterPPM    = 4.7

	creatinePPM = 3.0
)

func testSynth() *testutil.Synth {
	return &testutil.Synth{
		Time:         testTime,
		Transients:   testTransients,
		Resonances:   editedResonances,
		Coils:        testCoils,
		SamplingRate: testSamplingRate,
		HzPerPPM:     testHzPerPPM,
		CenterPPM:    testCenterPPM,
		// One dominant coil, the rest weak and arbitrarily phased.
		CoilGains: []complex128{
			complex(2.0, 0) * cmplxRect(-0.7),
			complex(0.4, 0) * cmplxRect(0.9),
			complex(0.3, 0) * cmplxRect(2.2),
			complex(0.2, 0) * cmplxRect(-2.5),
		},
		WaterTransients: acquisition.DefaultWaterTransients,
		Water:           testutil.Line{PPM: testCenterPPM, Amplitude: 50, T2: 0.08},
		Lines: []testutil.Line{
			{PPM: creatinePPM, Amplitude: 1, T2: 0.05},
			{PPM: naaPPM, Amplitude: 1.5, T2: 0.05},
		},
		EditedLines: []testutil.Line{
			{PPM: creatinePPM, Amplitude: 0.3, T2: 0.04},
			{PPM: naaPPM, Amplitude: -0.8, T2: 0.05},
		},
		Noise: 1e-3,
		Seed:  42,
	}
}

func generate(t *testing.T, s *testutil.Synth) *Acquisition {
	t.Helper()
	data, shape := s.Generate()
	a, err := NewAcquisition(data, shape...)
	require.NoError(t, err)
	return a
}

// testConfig is the default configuration at the test sampling rate.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SamplingRate = testSamplingRate
	return cfg
}

// defaultRateSynth renders testSynth at the default sampling rate with
// enough samples for the lines to decay.
func defaultRateSynth() *testutil.Synth {
	s := testSynth()
	s.SamplingRate = DefaultConfig().SamplingRate
	s.Time = 512
	for i := range s.Lines {
		s.Lines[i].T2 = 0.03
	}
	for i := range s.EditedLines {
		s.EditedLines[i].T2 = 0.03
	}
	return s
}

// withPhase returns testSynth with every metabolite line rotated by phi.
func withPhase(phi float64) *testutil.Synth {
	s := testSynth()
	for i := range s.Lines {
		s.Lines[i].Phase = phi
	}
	for i := range s.EditedLines {
		s.EditedLines[i].Phase = phi
	}
	return s
}
