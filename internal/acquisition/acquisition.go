// Package acquisition holds the in-memory layout of raw MRS data and of the
// coil-combined time series derived from it.
//
// Raw data is a row-major array over [time, transient, resonance, coil].
// Readers for scanner formats must transpose into this order before handing
// data to the pipeline.
package acquisition

import (
	"errors"
	"fmt"
)

// Axis counts accepted by New.
const (
	axesFull     = 4 // time, transient, resonance, coil
	axesSqueezed = 3 // time, transient, coil (single resonance)
)

// ErrShape indicates an array whose axes do not match the documented
// convention, or transient indices outside the transient axis.
var ErrShape = errors.New("inconsistent acquisition shape")

// Acquisition is a complex array indexed [time, transient, resonance, coil].
// It is treated as read-only by every stage of the pipeline.
type Acquisition struct {
	Time       int
	Transients int
	Resonances int
	Coils      int

	// Data is row-major: coil varies fastest, time slowest.
	Data []complex128
}

// New wraps data with the given shape. Four axes are read as
// [time, transient, resonance, coil]. Three axes are read as a squeezed
// [time, transient, coil] array holding a single resonance condition.
// Data is not copied.
func New(data []complex128, shape ...int) (*Acquisition, error) {
	var a Acquisition
	switch len(shape) {
	case axesFull:
		a = Acquisition{Time: shape[0], Transients: shape[1], Resonances: shape[2], Coils: shape[3]}
	case axesSqueezed:
		a = Acquisition{Time: shape[0], Transients: shape[1], Resonances: 1, Coils: shape[2]}
	default:
		return nil, fmt.Errorf("%w: expected 3 or 4 axes, got %d", ErrShape, len(shape))
	}

	for i, n := range shape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: axis %d has length %d", ErrShape, i, n)
		}
	}

	if want := a.Time * a.Transients * a.Resonances * a.Coils; len(data) != want {
		return nil, fmt.Errorf("%w: shape %v needs %d samples, got %d", ErrShape, shape, want, len(data))
	}

	a.Data = data
	return &a, nil
}

// Shape returns the four axis lengths.
func (a *Acquisition) Shape() [4]int {
	return [4]int{a.Time, a.Transients, a.Resonances, a.Coils}
}

func (a *Acquisition) index(t, tr, r, c int) int {
	return ((t*a.Transients+tr)*a.Resonances+r)*a.Coils + c
}

// At returns the sample at time t, transient tr, resonance r and coil c.
func (a *Acquisition) At(t, tr, r, c int) complex128 {
	return a.Data[a.index(t, tr, r, c)]
}

// CoilSeries copies the time series of one (transient, resonance, coil)
// cell into dst, which must hold a.Time samples, and returns it.
// A nil dst is allocated.
func (a *Acquisition) CoilSeries(dst []complex128, tr, r, c int) []complex128 {
	if dst == nil {
		dst = make([]complex128, a.Time)
	}
	stride := a.Transients * a.Resonances * a.Coils
	idx := a.index(0, tr, r, c)
	for t := range a.Time {
		dst[t] = a.Data[idx+t*stride]
	}
	return dst
}

// SelectTransients returns a new acquisition holding only the listed
// transients, in the given order.
func (a *Acquisition) SelectTransients(idx []int) (*Acquisition, error) {
	for _, i := range idx {
		if i < 0 || i >= a.Transients {
			return nil, fmt.Errorf("%w: transient index %d outside [0, %d)", ErrShape, i, a.Transients)
		}
	}

	out := &Acquisition{
		Time:       a.Time,
		Transients: len(idx),
		Resonances: a.Resonances,
		Coils:      a.Coils,
		Data:       make([]complex128, a.Time*len(idx)*a.Resonances*a.Coils),
	}
	cell := a.Resonances * a.Coils
	for t := range a.Time {
		for j, tr := range idx {
			src := a.index(t, tr, 0, 0)
			dst := out.index(t, j, 0, 0)
			copy(out.Data[dst:dst+cell], a.Data[src:src+cell])
		}
	}
	return out, nil
}
