package coil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/simdops"
	"github.com/tphakala/go-mrs/internal/testutil"
)

const (
	testTime         = 256
	testTransients   = 8
	testResonances   = 2
	testSamplingRate = 2000.0
	testHzPerPPM     = 127.68
	testCenterPPM    = 4.7

	weightTolerance = 1e-3
)

func synthAcquisition(t *testing.T, gains []complex128, noise float64) *acquisition.Acquisition {
	t.Helper()
	s := testutil.Synth{
		Time:            testTime,
		Transients:      testTransients,
		Resonances:      testResonances,
		Coils:           len(gains),
		SamplingRate:    testSamplingRate,
		HzPerPPM:        testHzPerPPM,
		CenterPPM:       testCenterPPM,
		CoilGains:       gains,
		WaterTransients: acquisition.DefaultWaterTransients,
		Water:           testutil.Line{PPM: testCenterPPM, Amplitude: 50, T2: 0.08},
		Lines:           []testutil.Line{{PPM: 3.0, Amplitude: 1, T2: 0.05}},
		Noise:           noise,
		Seed:            7,
	}
	data, shape := s.Generate()
	a, err := acquisition.New(data, shape...)
	require.NoError(t, err)
	return a
}

func separate(t *testing.T, a *acquisition.Acquisition) (*acquisition.Acquisition, *acquisition.Acquisition) {
	t.Helper()
	w, s, _, err := acquisition.Separate(a, acquisition.DefaultWaterTransients)
	require.NoError(t, err)
	return w, s
}

// TestCombine_PhaseAlignment verifies the reference peak of every combined
// water series sits at zero phase.
func TestCombine_PhaseAlignment(t *testing.T) {
	gains := []complex128{
		cmplx.Rect(1.0, 0.4),
		cmplx.Rect(0.6, -1.3),
		cmplx.Rect(0.3, 2.9),
		cmplx.Rect(0.8, -2.5),
	}
	water, supp := separate(t, synthAcquisition(t, gains, 0.01))

	res, err := Combine(water, supp, nil)
	require.NoError(t, err)

	fft := fourier.NewCmplxFFT(testTime)
	for tr := range res.Water.Transients {
		for r := range res.Water.Resonances {
			coeffs := fft.Coefficients(nil, res.Water.Row(tr, r))
			testutil.AssertPhaseNear(t, 0, cmplx.Phase(coeffs[0]), testutil.PhaseTolerance,
				"transient %d resonance %d", tr, r)
		}
	}
}

func TestCombine_PreservesTimeAxis(t *testing.T) {
	gains := []complex128{1, 0.5i, -0.25, 0.1}
	water, supp := separate(t, synthAcquisition(t, gains, 0))

	res, err := Combine(water, supp, nil)
	require.NoError(t, err)

	assert.Equal(t, testTime, res.Water.Time)
	assert.Equal(t, testTime, res.Suppressed.Time)
	assert.Equal(t, water.Transients, res.Water.Transients)
	assert.Equal(t, supp.Transients, res.Suppressed.Transients)
	assert.Equal(t, testResonances, res.Suppressed.Resonances)
	assert.Len(t, res.Suppressed.Data, supp.Transients*testResonances*testTime)
}

func TestWeights_UnitNormAndDominantCoil(t *testing.T) {
	gains := []complex128{cmplx.Rect(1, 0.7), 1e-4, 1e-4i, -1e-4}
	water, _ := separate(t, synthAcquisition(t, gains, 0))

	w, err := Weights(water, fourier.NewCmplxFFT(testTime))
	require.NoError(t, err)
	require.Len(t, w, len(gains))

	var power float64
	for _, v := range w {
		power += real(v)*real(v) + imag(v)*imag(v)
	}
	assert.InDelta(t, 1.0, power, weightTolerance)
	assert.InDelta(t, 1.0, cmplx.Abs(w[0]), weightTolerance)
	for _, v := range w[1:] {
		assert.Less(t, cmplx.Abs(v), weightTolerance)
	}
	// the weight undoes the coil phase
	testutil.AssertPhaseNear(t, -0.7, cmplx.Phase(w[0]), 1e-3)
}

func TestWeights_ZeroEnergyCoil(t *testing.T) {
	gains := []complex128{1, 0, 0.5}
	water, _ := separate(t, synthAcquisition(t, gains, 0))

	w, err := Weights(water, fourier.NewCmplxFFT(testTime))
	require.NoError(t, err)
	assert.Equal(t, complex128(0), w[1])
	assert.False(t, cmplx.IsNaN(w[0]))
	assert.False(t, cmplx.IsNaN(w[2]))
}

func TestCombine_AllZeroIsDegenerate(t *testing.T) {
	a, err := acquisition.New(make([]complex128, testTime*testTransients*testResonances*4),
		testTime, testTransients, testResonances, 4)
	require.NoError(t, err)
	water, supp := separate(t, a)

	_, err = Combine(water, supp, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateSignal)
}

func TestCombine_ShapeMismatch(t *testing.T) {
	water, _ := separate(t, synthAcquisition(t, []complex128{1, 1}, 0))
	_, other := separate(t, synthAcquisition(t, []complex128{1, 1, 1}, 0))

	_, err := Combine(water, other, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, acquisition.ErrShape)
}

func TestCombine_Normalization(t *testing.T) {
	water, supp := separate(t, synthAcquisition(t, []complex128{2, 1i}, 0.01))

	res, err := Combine(water, supp, nil)
	require.NoError(t, err)

	for _, s := range []*acquisition.Series{res.Water, res.Suppressed} {
		var total complex128
		for _, v := range s.Data {
			total += v
		}
		rows := float64(s.Transients * s.Resonances)
		assert.InDelta(t, float64(s.Time), cmplx.Abs(total)/rows, 1e-6)
	}
}

func TestCombine_SingleCoilIsScaledCopy(t *testing.T) {
	water, supp := separate(t, synthAcquisition(t, []complex128{cmplx.Rect(3, 1.1)}, 0))

	res, err := Combine(water, supp, nil)
	require.NoError(t, err)

	// with one coil the output is the input rotated and rescaled, so the
	// ratio to the raw samples is the same everywhere
	ratio := res.Suppressed.Row(0, 0)[0] / supp.At(0, 0, 0, 0)
	for tm := 1; tm < 20; tm++ {
		got := res.Suppressed.Row(0, 0)[tm] / supp.At(tm, 0, 0, 0)
		assert.InDelta(t, real(ratio), real(got), 1e-6*math.Max(1, cmplx.Abs(ratio)))
		assert.InDelta(t, imag(ratio), imag(got), 1e-6*math.Max(1, cmplx.Abs(ratio)))
	}
}

func TestCombine_SIMDMatchesGeneric(t *testing.T) {
	gains := []complex128{cmplx.Rect(1.0, 0.4), cmplx.Rect(0.6, -1.3), cmplx.Rect(0.3, 2.9)}
	water, supp := separate(t, synthAcquisition(t, gains, 0.01))

	fast, err := Combine(water, supp, simdops.For(true))
	require.NoError(t, err)
	slow, err := Combine(water, supp, simdops.For(false))
	require.NoError(t, err)

	assert.Equal(t, slow.Weights, fast.Weights)
	require.Len(t, fast.Suppressed.Data, len(slow.Suppressed.Data))
	for i, v := range slow.Suppressed.Data {
		assert.InDelta(t, real(v), real(fast.Suppressed.Data[i]), 1e-9)
		assert.InDelta(t, imag(v), imag(fast.Suppressed.Data[i]), 1e-9)
	}
}
