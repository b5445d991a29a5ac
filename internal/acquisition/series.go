package acquisition

// Series is a coil-combined complex time series indexed
// [transient, resonance, time]. Time is the contiguous last axis.
type Series struct {
	Transients int
	Resonances int
	Time       int

	Data []complex128
}

// NewSeries allocates a zeroed series.
func NewSeries(transients, resonances, time int) *Series {
	return &Series{
		Transients: transients,
		Resonances: resonances,
		Time:       time,
		Data:       make([]complex128, transients*resonances*time),
	}
}

// Row returns the time series of one (transient, resonance) pair.
// The returned slice aliases the series storage.
func (s *Series) Row(tr, r int) []complex128 {
	off := (tr*s.Resonances + r) * s.Time
	return s.Data[off : off+s.Time : off+s.Time]
}

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	out := *s
	out.Data = append([]complex128(nil), s.Data...)
	return &out
}
