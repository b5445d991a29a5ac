package simdops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const opsTolerance = 1e-9

func testSignal(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(0.37*float64(i)) + 0.1*float64(i%7)
	}
	return s
}

// TestOps_SIMDMatchesGeneric verifies both kernel tables agree.
func TestOps_SIMDMatchesGeneric(t *testing.T) {
	fast := For(true)
	slow := For(false)

	a := testSignal(67)
	kernel := []float64{0.25, 0.5, 0.25}
	outFast := make([]float64, len(a)-len(kernel)+1)
	outSlow := make([]float64, len(outFast))
	fast.ConvolveValid(outFast, a, kernel)
	slow.ConvolveValid(outSlow, a, kernel)
	assert.InDeltaSlice(t, outSlow, outFast, opsTolerance)

	scaledFast := make([]float64, len(a))
	scaledSlow := make([]float64, len(a))
	fast.Scale(scaledFast, a, 3)
	slow.Scale(scaledSlow, a, 3)
	assert.InDeltaSlice(t, scaledSlow, scaledFast, opsTolerance)

	za := []complex128{1 + 2i, -3 + 0.5i, 2i, 4}
	zb := []complex128{0.5 - 1i, 1i, -1, 2 + 2i}
	mulFast := make([]complex128, len(za))
	mulSlow := make([]complex128, len(za))
	fast.MulComplex(mulFast, za, zb)
	slow.MulComplex(mulSlow, za, zb)
	assertComplexNear(t, mulSlow, mulFast)

	scaleFast := make([]complex128, len(za))
	scaleSlow := make([]complex128, len(za))
	fast.ScaleComplex(scaleFast, za, 0.5-2i)
	slow.ScaleComplex(scaleSlow, za, 0.5-2i)
	assertComplexNear(t, scaleSlow, scaleFast)

	addFast := make([]complex128, len(za))
	addSlow := make([]complex128, len(za))
	fast.AddComplex(addFast, za, zb)
	slow.AddComplex(addSlow, za, zb)
	assertComplexNear(t, addSlow, addFast)
}

func assertComplexNear(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, real(want[i]), real(got[i]), opsTolerance)
		assert.InDelta(t, imag(want[i]), imag(got[i]), opsTolerance)
	}
}

func TestComplexKernels(t *testing.T) {
	z := []complex128{1 + 2i, -3 - 4i}
	for _, simd := range []bool{true, false} {
		ops := For(simd)

		scaled := make([]complex128, 2)
		ops.ScaleComplex(scaled, z, 1i)
		assertComplexNear(t, []complex128{-2 + 1i, 4 - 3i}, scaled)

		sum := []complex128{1, 1}
		ops.AddComplex(sum, sum, z)
		assertComplexNear(t, []complex128{2 + 2i, -2 - 4i}, sum)
	}
}

func TestConvolveValid_Correlates(t *testing.T) {
	signal := []float64{1, 2, 3, 4}
	kernel := []float64{1, 0}
	out := make([]float64, 3)
	For(false).ConvolveValid(out, signal, kernel)
	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestSplitJoinComplex(t *testing.T) {
	z := []complex128{1 + 2i, -3 - 4i}
	re := make([]float64, 2)
	im := make([]float64, 2)
	SplitComplex(re, im, z)
	require.Equal(t, []float64{1, -3}, re)
	require.Equal(t, []float64{2, -4}, im)

	back := make([]complex128, 2)
	JoinComplex(back, re, im)
	assert.Equal(t, z, back)
}
