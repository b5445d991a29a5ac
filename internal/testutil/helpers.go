// Package testutil provides reusable test helpers for the MRS pipeline tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	PhaseTolerance   = 0.1  // radians
	PPMTolerance     = 0.05 // chemical shift
	AreaTolerance    = 1e-2 // relative
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertStrictlyDecreasing verifies that every element is below its predecessor.
func AssertStrictlyDecreasing(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] >= s[i-1] {
			return assert.Fail(t, "not strictly decreasing",
				"s[%d]=%f >= s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertPhaseNear verifies that angle a is within tolerance of want, modulo 2π.
func AssertPhaseNear(t *testing.T, want, a, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	d := math.Remainder(a-want, 2*math.Pi)
	return assert.LessOrEqual(t, math.Abs(d), tolerance, msgAndArgs...)
}

// AssertSymmetric verifies that s[i] == s[len-1-i] within tolerance.
func AssertSymmetric(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		if math.Abs(s[i]-s[n-1-i]) > tolerance {
			return assert.Fail(t, "not symmetric",
				"s[%d]=%g != s[%d]=%g", i, s[i], n-1-i, s[n-1-i])
		}
	}
	return true
}

// AssertCenterIsMax verifies that the center element is the maximum.
func AssertCenterIsMax(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	center := len(s) / 2
	for i, v := range s {
		if v > s[center] {
			return assert.Fail(t, "center is not max",
				"s[%d]=%g > s[center=%d]=%g", i, v, center, s[center])
		}
	}
	return true
}
