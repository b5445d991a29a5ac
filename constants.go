package mrs

// Edited acquisition layout
const (
	editedResonances = 2
	offResonance     = 0 // echo1
	onResonance      = 1 // echo2
)

// Chemical shift windows in ppm
const (
	defaultMinPPM       = -0.7
	defaultMaxPPM       = 4.3
	defaultCreatineLow  = 2.7
	defaultCreatineHigh = 3.2
	defaultGABALow      = 2.8
	defaultGABAHigh     = 3.4

	// NAA reference line used for frequency alignment
	naaPPM = 2.0
)

// filterEdgeMargin scales the largest window offset into the default upper
// filter edge.
const filterEdgeMargin = 2.0

// Concentration estimate (Sanacora et al. 1999): creatine is taken as
// 9 mM, scaled by the ratio of creatine to GABA protons contributing to
// the fitted signals.
const (
	creatineConcentration = 9.0
	protonRatio           = 1.5

	// ConcentrationScale multiplies the GABA/creatine area ratio.
	ConcentrationScale = protonRatio * creatineConcentration
)
