package network

import (
	"errors"
	"fmt"

	"github.com/nordicgrid/powerflow/internal/consts"
)

// Sentinel errors for the ill-posed-network cases of spec.md section 7.
// Callers distinguish them with errors.Is.
var (
	ErrNoSlack       = errors.New("network: no slack bus defined")
	ErrMultipleSlack = errors.New("network: more than one slack bus defined")
	ErrEmptySystem   = errors.New("network: system has no buses")
)

// System owns an ordered sequence of buses (slack first, then PQ, then
// PV - see spec.md section 3, the ordering the Jacobian block structure
// depends on), plus the lines and transformers connecting them. It holds
// the bus voltages and the solver status string. It does not store the
// admittance matrix, Jacobian or mismatch vector: package newton builds
// those afresh inside each solve and discards them afterwards.
//
// A System is built once via the Add* methods (or by the netlist
// parser) and then solved repeatedly by package newton; package harness
// mutates bus/line fields between solves. During a single solve, the
// bus ordering, line set, and transformer set must not change.
type System struct {
	Name  string
	SBase float64 // MVA

	slack      *Bus
	pqBuses    []*Bus
	pvBuses    []*Bus
	Buses      []*Bus // ordered: slack, PQ..., PV... - rebuilt by reindex()

	Lines        []*Line
	Transformers []*Transformer

	Status string // solver status, e.g. "solved (...)" or "non-convergent after N iterations"
}

// New creates an empty system on the given base power (MVA). A zero
// sBase is replaced by consts.DefaultSBase.
func New(name string, sBase float64) *System {
	if sBase == 0 {
		sBase = consts.DefaultSBase
	}
	return &System{Name: name, SBase: sBase, Status: "unsolved"}
}

// reindex rebuilds the ordered Buses slice (slack, then PQ, then PV)
// and assigns each bus its stable index. Mirrors the teacher's
// AssignNodeBranchMaps ordering pass and the python organize_buses.
func (s *System) reindex() {
	s.Buses = s.Buses[:0]
	if s.slack != nil {
		s.Buses = append(s.Buses, s.slack)
	}
	s.Buses = append(s.Buses, s.pqBuses...)
	s.Buses = append(s.Buses, s.pvBuses...)
	for i, b := range s.Buses {
		b.index = i
	}
}

// AddSlack adds the reference bus: V and Theta are fixed inputs.
func (s *System) AddSlack(v, vb, theta, pl, ql, g, b float64, name string) (*Bus, error) {
	if s.slack != nil {
		return nil, fmt.Errorf("network: add slack bus %q: %w", name, ErrMultipleSlack)
	}
	bus := &Bus{Name: name, Kind: Slack, V: v, Theta: theta, PL: pl, QL: ql, G: g, B: b, Vb: vb}
	s.slack = bus
	s.reindex()
	return bus, nil
}

// AddPQ adds a load bus: PL and QL are fixed inputs.
func (s *System) AddPQ(pl, ql, vb, g, b float64, name string) *Bus {
	bus := &Bus{Name: name, Kind: PQ, V: 1, Theta: 0, PL: pl, QL: ql, G: g, B: b, Vb: vb}
	s.pqBuses = append(s.pqBuses, bus)
	s.reindex()
	return bus
}

// AddPV adds a generator bus: V and PL are fixed inputs.
func (s *System) AddPV(pl, v, vb, ql, g, b float64, name string) *Bus {
	bus := &Bus{Name: name, Kind: PV, V: v, Theta: 0, PL: pl, QL: ql, G: g, B: b, Vb: vb}
	s.pvBuses = append(s.pvBuses, bus)
	s.reindex()
	return bus
}

// AddLine adds a pi-model line. totalG and totalB are the line's total
// shunt conductance/susceptance; the assembler contract only ever sees
// the pre-split FromY/ToY, so the split happens here once.
func (s *System) AddLine(from, to *Bus, r, x, totalG, totalB float64) *Line {
	totalY := complex(totalG, totalB)
	line := &Line{
		FromBus:     from,
		ToBus:       to,
		R:           r,
		X:           x,
		FromY:       totalY / 2,
		ToY:         totalY / 2,
		InOperation: true,
	}
	s.Lines = append(s.Lines, line)
	return line
}

// AddTransformer adds a two-winding transformer, performing the base
// change from its own MVA rating to the system's SBase.
func (s *System) AddTransformer(from, to *Bus, r, x, n, mva float64) *Transformer {
	t := NewTransformer(from, to, r, x, n, mva, s.SBase)
	s.Transformers = append(s.Transformers, t)
	return t
}

// NonSlackBuses returns PQ buses followed by PV buses - the bus order
// backing the angle unknowns x[0:N-1] of the Newton-Raphson state vector.
func (s *System) NonSlackBuses() []*Bus {
	out := make([]*Bus, 0, len(s.pqBuses)+len(s.pvBuses))
	out = append(out, s.pqBuses...)
	out = append(out, s.pvBuses...)
	return out
}

// PQBuses returns the PQ buses in system order.
func (s *System) PQBuses() []*Bus { return s.pqBuses }

// PVBuses returns the PV buses in system order.
func (s *System) PVBuses() []*Bus { return s.pvBuses }

// Slack returns the slack bus, or nil if none has been added yet.
func (s *System) Slack() *Bus { return s.slack }

// Validate checks the ill-posed-network conditions of spec.md section 7
// that are detectable from the data model alone (exactly one slack bus,
// a non-empty bus list). Branch endpoint validity is guaranteed by
// construction here since Add* methods take *Bus references directly;
// the netlist parser performs its own name-lookup validation before
// ever calling these methods.
func (s *System) Validate() error {
	if len(s.Buses) == 0 {
		return ErrEmptySystem
	}
	if s.slack == nil {
		return ErrNoSlack
	}
	return nil
}
