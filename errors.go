package mrs

import (
	"errors"

	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/coil"
	"github.com/tphakala/go-mrs/internal/peak"
)

// Errors returned by the pipeline. Match them with errors.Is.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid mrs configuration")

	// ErrShape indicates inconsistent array dimensions or out-of-range
	// transient indices.
	ErrShape = acquisition.ErrShape

	// ErrDegenerateSignal indicates that every coil had zero energy at the
	// water reference frequency.
	ErrDegenerateSignal = coil.ErrDegenerateSignal

	// ErrAllTransientsRejected indicates that no transient survived
	// fitting and outlier rejection.
	ErrAllTransientsRejected = peak.ErrAllTransientsRejected
)
