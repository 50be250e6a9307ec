// Package netlist parses the whitespace-separated Barra/Generador/Carga/
// Compensador/Línea/Transformador record format into a *network.System,
// performing the nameplate-to-per-unit conversions spec.md section 6
// leaves to the external parser. It is the boundary where untrusted
// textual input is validated; the core solver never sees malformed data.
package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nordicgrid/powerflow/pkg/network"
)

// ErrUnknownBus is returned when any record references a bus name with
// no matching (and, for Generador/Carga/Compensador, preceding) Barra record.
var ErrUnknownBus = errors.New("netlist: record references unknown bus")

// record is one tokenized line, kept around until the whole file has
// been scanned: bus records (Barra/Generador/Carga/Compensador) must be
// fully resolved before a branch record (Línea/Transformador) can look
// up its endpoints by name.
type record struct {
	words []string
}

func (r record) kind() string {
	if len(r.words) == 0 {
		return ""
	}
	return r.words[0]
}

// float returns words[i], trimmed and parsed as a float64, or an error if
// the line is too short or the field doesn't parse as a float.
func (r record) float(i int) (float64, error) {
	if i >= len(r.words) {
		return 0, fmt.Errorf("netlist: field %d missing in record %q", i, strings.Join(r.words, " "))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r.words[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("netlist: field %d of record %q: %w", i, strings.Join(r.words, " "), err)
	}
	return v, nil
}

func (r record) str(i int) (string, error) {
	if i >= len(r.words) {
		return "", fmt.Errorf("netlist: field %d missing in record %q", i, strings.Join(r.words, " "))
	}
	return strings.TrimSpace(r.words[i]), nil
}

// busAccum mirrors read_system.py's MyBus accumulation: a bus starts out
// PQ with zero load when its Barra record is seen, then Generador/Carga/
// Compensador records mutate it in place before any branch references it.
type busAccum struct {
	name     string
	vb       float64
	v, theta float64
	pl, ql   float64
	g, b     float64
	kind     network.Kind
}

// Parse reads the record format of spec.md section 6 and builds a
// *network.System on the given base power (MVA). Lines are split on a
// single literal space, matching the fixed word positions the source
// data format assumes (consecutive spaces produce empty fields that
// still count towards position, exactly as the original parser relies on).
func Parse(r io.Reader, name string, sBase float64) (*network.System, error) {
	var records []record
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, record{words: strings.Split(line, " ")})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netlist: reading input: %w", err)
	}

	buses := make(map[string]*busAccum)
	order := make([]string, 0)

	for _, rec := range records {
		switch rec.kind() {
		case "Barra":
			bname, err := rec.str(2)
			if err != nil {
				return nil, err
			}
			vb, err := rec.float(7)
			if err != nil {
				return nil, err
			}
			buses[bname] = &busAccum{name: bname, vb: vb, kind: network.PQ}
			order = append(order, bname)

		case "Generador":
			bname, err := rec.str(3)
			if err != nil {
				return nil, err
			}
			bus, ok := buses[bname]
			if !ok {
				return nil, fmt.Errorf("netlist: Generador bus %q: %w", bname, ErrUnknownBus)
			}
			vkV, err := rec.float(12)
			if err != nil {
				return nil, err
			}
			if bname == "g20" {
				bus.v = vkV / bus.vb
				bus.theta = 0
				bus.kind = network.Slack
				continue
			}
			p, err := rec.float(7)
			if err != nil {
				return nil, err
			}
			bus.pl -= p / sBase
			bus.v = vkV / bus.vb
			bus.kind = network.PV

		case "Carga":
			bname, err := rec.str(3)
			if err != nil {
				return nil, err
			}
			bus, ok := buses[bname]
			if !ok {
				return nil, fmt.Errorf("netlist: Carga bus %q: %w", bname, ErrUnknownBus)
			}
			p, err := rec.float(5)
			if err != nil {
				return nil, err
			}
			q, err := rec.float(8)
			if err != nil {
				return nil, err
			}
			bus.pl += p / sBase
			bus.ql += q / sBase

		case "Compensador":
			bname, err := rec.str(3)
			if err != nil {
				return nil, err
			}
			bus, ok := buses[bname]
			if !ok {
				return nil, fmt.Errorf("netlist: Compensador bus %q: %w", bname, ErrUnknownBus)
			}
			q, err := rec.float(6)
			if err != nil {
				return nil, err
			}
			bus.b = q / sBase
		}
	}

	sys := network.New(name, sBase)
	busPtrs := make(map[string]*network.Bus, len(buses))
	for _, bname := range order {
		acc := buses[bname]
		var (
			bus *network.Bus
			err error
		)
		switch acc.kind {
		case network.Slack:
			bus, err = sys.AddSlack(acc.v, acc.vb, acc.theta, acc.pl, acc.ql, acc.g, acc.b, acc.name)
		case network.PV:
			bus = sys.AddPV(acc.pl, acc.v, acc.vb, acc.ql, acc.g, acc.b, acc.name)
		default:
			bus = sys.AddPQ(acc.pl, acc.ql, acc.vb, acc.g, acc.b, acc.name)
		}
		if err != nil {
			return nil, fmt.Errorf("netlist: building bus %q: %w", bname, err)
		}
		busPtrs[bname] = bus
	}

	for _, rec := range records {
		switch rec.kind() {
		case "Línea":
			if err := addLine(sys, rec, busPtrs, sBase); err != nil {
				return nil, err
			}
		case "Transformador":
			if err := addTransformer(sys, rec, busPtrs); err != nil {
				return nil, err
			}
		}
	}

	return sys, nil
}

// addLine converts a Línea record's nameplate ohms/microsiemens to
// per-unit on the "from" bus's base voltage and sBase, per spec.md section 6.
func addLine(sys *network.System, rec record, busPtrs map[string]*network.Bus, sBase float64) error {
	fromName, err := rec.str(2)
	if err != nil {
		return err
	}
	toName, err := rec.str(4)
	if err != nil {
		return err
	}
	from, ok := busPtrs[fromName]
	if !ok {
		return fmt.Errorf("netlist: Línea bus %q: %w", fromName, ErrUnknownBus)
	}
	to, ok := busPtrs[toName]
	if !ok {
		return fmt.Errorf("netlist: Línea bus %q: %w", toName, ErrUnknownBus)
	}

	rOhm, err := rec.float(8)
	if err != nil {
		return err
	}
	xOhm, err := rec.float(12)
	if err != nil {
		return err
	}
	bMicroS, err := rec.float(17)
	if err != nil {
		return err
	}

	vb2 := from.Vb * from.Vb
	rPU := rOhm * sBase / vb2
	xPU := xOhm * sBase / vb2
	bPU := bMicroS * 1e-6 * vb2 / sBase

	sys.AddLine(from, to, rPU, xPU, 0, bPU)
	return nil
}

// addTransformer converts a Transformador record's percent impedance and
// tap to the system base, per spec.md sections 3 and 6.
func addTransformer(sys *network.System, rec record, busPtrs map[string]*network.Bus) error {
	fromName, err := rec.str(2)
	if err != nil {
		return err
	}
	toName, err := rec.str(4)
	if err != nil {
		return err
	}
	from, ok := busPtrs[fromName]
	if !ok {
		return fmt.Errorf("netlist: Transformador bus %q: %w", fromName, ErrUnknownBus)
	}
	to, ok := busPtrs[toName]
	if !ok {
		return fmt.Errorf("netlist: Transformador bus %q: %w", toName, ErrUnknownBus)
	}

	rPct, err := rec.float(8)
	if err != nil {
		return err
	}
	xPct, err := rec.float(12)
	if err != nil {
		return err
	}
	tapPct, err := rec.float(16)
	if err != nil {
		return err
	}
	mva, err := rec.float(21)
	if err != nil {
		return err
	}

	sys.AddTransformer(from, to, rPct/100, xPct/100, tapPct/100, mva)
	return nil
}
