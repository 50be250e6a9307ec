package network

// Line is a symmetric pi-model branch between two buses.
type Line struct {
	FromBus, ToBus *Bus
	R, X           float64 // series resistance, reactance, pu

	FromY, ToY complex128 // shunt admittance at each end, pu

	InOperation bool // false: electrically absent, contributes nothing to Y
}

// SeriesY returns the series branch admittance y = 1/(R+jX).
func (l *Line) SeriesY() complex128 {
	return 1 / complex(l.R, l.X)
}
