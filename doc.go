// Package mrs quantifies GABA in edited magnetic resonance spectroscopy
// (MEGA-PRESS style) acquisitions in pure Go.
//
// An acquisition is a complex array indexed [time, transient, resonance,
// coil]. Resonance 0 holds the off-resonance ("echo1") data and resonance 1
// the on-resonance ("echo2") data. A few transients are acquired without
// water suppression and serve as the reference for combining the coils.
//
// # Pipeline
//
//	Acquisition -> Separate -> Combine coils -> Spectra -> ppm window
//	            -> Fit creatine (Lorentzian, echo1)
//	            -> Fit GABA (Gaussian, echo2 - echo1, creatine-kept transients)
//	            -> Integrate -> GABA / creatine ratio
//
// Coils are weighted by the amplitude of their water reference peak and
// rotated to zero phase (Wald & Wright 1997). Each combined free induction
// decay is low-pass filtered with a zero-phase Kaiser FIR, apodized with an
// exponential line broadening, zero filled and Fourier transformed. The
// frequency axis of every spectrum descends, so the ppm axis does too.
//
// # Quick Start
//
//	a, err := mrs.NewAcquisition(data, time, transients, 2, coils)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := mrs.DefaultConfig()
//	cfg.SamplingRate = 5000
//
//	res, err := mrs.Analyze(a, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("GABA/Cr: %.3f\n", res.Concentration)
//
// The stages are also available individually: [DeriveSpectra],
// [FitCreatine], [FitGABA] and [EstimateConcentration].
//
// # Outlier Rejection
//
// Peaks are fitted to every transient separately. A transient whose fit
// does not converge is marked failed; with rejection enabled, a transient
// whose fitted parameters lie more than [Config.ZThreshold] standard
// deviations from the mean on any parameter is marked as an outlier. Only
// transients kept by the creatine fit are used for the GABA fit.
//
// # Logging
//
// The package never prints. Set [Config.Logger] to any
// github.com/go-logr/logr implementation to receive progress (V(1)) and
// rejection summaries (V(0)).
//
// # Thread Safety
//
// All functions are safe for concurrent use on distinct inputs. With
// [Config.EnableParallel] the per-transient fits of one call run on
// separate goroutines; results do not depend on scheduling.
package mrs
