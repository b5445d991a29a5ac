package mrs

import (
	"github.com/tphakala/go-mrs/internal/acquisition"
)

// Acquisition is raw complex data indexed [time, transient, resonance, coil].
type Acquisition = acquisition.Acquisition

// NewAcquisition wraps row-major data of the given shape. A three-axis
// shape is read as [time, transient, coil] with a single resonance.
func NewAcquisition(data []complex128, shape ...int) (*Acquisition, error) {
	return acquisition.New(data, shape...)
}

// Series is a coil-combined time series indexed [transient, resonance, time].
type Series = acquisition.Series
