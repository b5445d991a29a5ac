package mrs

import (
	"math"
	"testing"
)

// TestAnalyzeParallel tests that parallel fitting produces identical results.
func TestAnalyzeParallel(t *testing.T) {
	a := generate(t, testSynth())

	configSeq := testConfig()
	configSeq.EnableParallel = false
	configPar := testConfig()
	configPar.EnableParallel = true

	resSeq, err := Analyze(a, &configSeq)
	if err != nil {
		t.Fatalf("Sequential Analyze failed: %v", err)
	}

	resPar, err := Analyze(a, &configPar)
	if err != nil {
		t.Fatalf("Parallel Analyze failed: %v", err)
	}

	if len(resSeq.Creatine.Batch.Fits) != len(resPar.Creatine.Batch.Fits) {
		t.Fatalf("Fit count mismatch: seq=%d, par=%d",
			len(resSeq.Creatine.Batch.Fits), len(resPar.Creatine.Batch.Fits))
	}

	// Verify fits are identical (bit-exact)
	for i, fs := range resSeq.Creatine.Batch.Fits {
		fp := resPar.Creatine.Batch.Fits[i]
		if fs.Status != fp.Status {
			t.Errorf("Transient %d status mismatch: seq=%v, par=%v", i, fs.Status, fp.Status)
		}
		for j := range fs.Params {
			if fs.Params[j] != fp.Params[j] {
				t.Errorf("Transient %d param %d mismatch: seq=%v, par=%v", i, j, fs.Params[j], fp.Params[j])
				break // Don't flood with errors
			}
		}
	}

	if resSeq.Concentration != resPar.Concentration {
		t.Errorf("Concentration mismatch: seq=%v, par=%v", resSeq.Concentration, resPar.Concentration)
	}
}

// TestAnalyzeTransientIndependence verifies a transient's fit does not
// depend on the other transients in the batch.
func TestAnalyzeTransientIndependence(t *testing.T) {
	full := testSynth()
	a := generate(t, full)

	cfg := testConfig()
	cfg.RejectOutliers = false
	cfg.EnableParallel = true

	s, err := DeriveSpectra(a, &cfg)
	if err != nil {
		t.Fatalf("DeriveSpectra failed: %v", err)
	}
	all, err := FitCreatine(s, &cfg)
	if err != nil {
		t.Fatalf("FitCreatine failed: %v", err)
	}

	// Fit only the last transient.
	last := len(s.Transients) - 1
	single := *s
	single.Echo1 = s.Echo1[last:]
	single.Transients = s.Transients[last:]
	one, err := FitCreatine(&single, &cfg)
	if err != nil {
		t.Fatalf("FitCreatine on one transient failed: %v", err)
	}

	want := all.Batch.Fits[last].Params
	got := one.Batch.Fits[0].Params
	for j := range want {
		if math.Abs(want[j]-got[j]) > 0 {
			t.Errorf("param %d: batch=%v, alone=%v", j, want[j], got[j])
		}
	}
}
