package acquisition

import (
	"fmt"
)

// DefaultWaterTransients are the water-unsuppressed transients of a standard
// edited acquisition. Transient 0 is left out because it routinely carries
// start-up artifacts.
var DefaultWaterTransients = []int{1, 2, 3}

// corruptTransient is excluded from the water-suppressed set unconditionally.
const corruptTransient = 0

// Partition records which transients went to each subset.
type Partition struct {
	Water      []int
	Suppressed []int
}

// Separate splits a along the transient axis into the water-unsuppressed
// transients named by waterIdx and the water-suppressed remainder.
// Transient 0 never enters the suppressed subset.
func Separate(a *Acquisition, waterIdx []int) (water, suppressed *Acquisition, p Partition, err error) {
	isWater := make([]bool, a.Transients)
	for _, i := range waterIdx {
		if i < 0 || i >= a.Transients {
			return nil, nil, Partition{}, fmt.Errorf("%w: water transient %d outside [0, %d)", ErrShape, i, a.Transients)
		}
		isWater[i] = true
	}

	for i, w := range isWater {
		switch {
		case w:
			p.Water = append(p.Water, i)
		case i != corruptTransient:
			p.Suppressed = append(p.Suppressed, i)
		}
	}

	if len(p.Water) == 0 {
		return nil, nil, Partition{}, fmt.Errorf("%w: no water-unsuppressed transients selected", ErrShape)
	}
	if len(p.Suppressed) == 0 {
		return nil, nil, Partition{}, fmt.Errorf("%w: no water-suppressed transients remain", ErrShape)
	}

	if water, err = a.SelectTransients(p.Water); err != nil {
		return nil, nil, Partition{}, err
	}
	if suppressed, err = a.SelectTransients(p.Suppressed); err != nil {
		return nil, nil, Partition{}, err
	}
	return water, suppressed, p, nil
}

// AllTransients returns the indices 0..n-1.
func AllTransients(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

