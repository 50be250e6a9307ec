package network

import "math/cmplx"

// Kind identifies the role a bus plays in the Newton-Raphson unknown
// vector: which quantities are fixed inputs and which are solved outputs.
type Kind int

const (
	Slack Kind = iota
	PV
	PQ
)

func (k Kind) String() string {
	switch k {
	case Slack:
		return "Slack"
	case PV:
		return "PV"
	case PQ:
		return "PQ"
	default:
		return "unknown"
	}
}

// Bus is one node of the network. All electrical quantities are in
// per-unit on the owning System's SBase; angles are in radians.
//
// Which fields are solver inputs vs. outputs depends on Kind:
//
//	Slack: V, Theta fixed; PL, QL solved (reported as generation)
//	PV:    V, PL fixed; Theta, QL solved
//	PQ:    PL, QL fixed; V, Theta solved
type Bus struct {
	Name string
	Kind Kind
	Vb   float64 // nominal base voltage, kV - metadata only

	V     float64 // voltage magnitude, pu
	Theta float64 // voltage angle, rad

	PL float64 // net active load, pu (positive = consumption)
	QL float64 // net reactive load, pu

	G float64 // shunt conductance, pu
	B float64 // shunt susceptance, pu

	PToNetwork float64 // solved output: complex power injected into the network
	QToNetwork float64

	index int // position in System.Buses, assigned at insertion
}

// Index returns the bus's stable position in its System's bus ordering.
// Valid once the bus has been added to a System.
func (b *Bus) Index() int { return b.index }

// PhasorV returns the bus voltage as a complex phasor V*exp(j*Theta).
func (b *Bus) PhasorV() complex128 {
	return cmplx.Rect(b.V, b.Theta)
}
