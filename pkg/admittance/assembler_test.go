package admittance_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nordicgrid/powerflow/pkg/admittance"
	"github.com/nordicgrid/powerflow/pkg/network"
)

func buildTwoBus(t *testing.T) (*network.System, *network.Bus, *network.Bus) {
	t.Helper()
	sys := network.New("two-bus", 100)
	slack, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "B1")
	require.NoError(t, err)
	load := sys.AddPQ(0.5, 0.1, 138, 0, 0, "B2")
	sys.AddLine(slack, load, 0.01, 0.1, 0, 0.02)
	return sys, slack, load
}

// TestSymmetric is invariant 4: off-diagonal Y entries are symmetric for
// a network with no off-nominal transformer taps.
func TestSymmetric(t *testing.T) {
	sys, slack, load := buildTwoBus(t)
	y := admittance.Build(sys)
	require.Equal(t, y[slack.Index()][load.Index()], y[load.Index()][slack.Index()])
}

// TestLineDisableRoundTrip is half of invariant 5 / scenario S4 at the Y
// level: disabling a line removes its contribution, re-enabling restores
// the original matrix exactly.
func TestLineDisableRoundTrip(t *testing.T) {
	sys, slack, load := buildTwoBus(t)
	before := admittance.Build(sys)

	sys.Lines[0].InOperation = false
	disabled := admittance.Build(sys)
	require.NotEqual(t, before[slack.Index()][load.Index()], disabled[slack.Index()][load.Index()])
	require.Equal(t, complex(0, 0), disabled[slack.Index()][load.Index()])

	sys.Lines[0].InOperation = true
	after := admittance.Build(sys)
	require.Equal(t, before, after)
}

func TestBusShuntOnDiagonal(t *testing.T) {
	sys := network.New("shunt", 100)
	_, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0.01, 0.02, "B1")
	require.NoError(t, err)
	y := admittance.Build(sys)
	require.Equal(t, complex(0.01, 0.02), y[0][0])
}
