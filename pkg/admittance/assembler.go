// Package admittance builds the nodal admittance matrix Y of a network
// from its bus shunts, lines, and transformers.
package admittance

import "github.com/nordicgrid/powerflow/pkg/network"

// Matrix is a dense N*N complex admittance matrix, indexed by the
// stable bus index assigned by network.System.
type Matrix [][]complex128

// New allocates a zeroed N*N matrix.
func New(n int) Matrix {
	m := make(Matrix, n)
	rows := make([]complex128, n*n)
	for i := range m {
		m[i] = rows[i*n : i*n+n : i*n+n]
	}
	return m
}

// Build assembles Y following spec.md section 4.1, in the fixed order
// (bus shunts, then lines, then transformers) that makes the result
// deterministic up to floating-point addition order.
func Build(sys *network.System) Matrix {
	n := len(sys.Buses)
	y := New(n)

	for i, bus := range sys.Buses {
		y[i][i] += complex(bus.G, bus.B)
	}

	for _, line := range sys.Lines {
		if !line.InOperation {
			continue
		}
		i, j := line.FromBus.Index(), line.ToBus.Index()
		ySeries := line.SeriesY()
		y[i][i] += ySeries + line.FromY
		y[j][j] += ySeries + line.ToY
		y[i][j] -= ySeries
		y[j][i] -= ySeries
	}

	for _, t := range sys.Transformers {
		i, j := t.FromBus.Index(), t.ToBus.Index()
		ySeries, fromY, toY := t.PiModel()
		y[i][i] += fromY + ySeries
		y[j][j] += toY + ySeries
		y[i][j] -= ySeries
		y[j][i] -= ySeries
	}

	return y
}
