package newton_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nordicgrid/powerflow/pkg/network"
	"github.com/nordicgrid/powerflow/pkg/newton"
)

type DriverSuite struct {
	suite.Suite
}

// TestTwoBus is scenario S1: slack at 1.0<0, PQ bus with PL=0.5, QL=0.1,
// line R=0.01, X=0.1. Expect convergence in <=5 iterations with
// |V2|~=0.9467, theta2~=-2.93deg.
func (s *DriverSuite) TestTwoBus() {
	sys := network.New("two-bus", 100)
	slack, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "B1")
	require.NoError(s.T(), err)
	load := sys.AddPQ(0.5, 0.1, 138, 0, 0, "B2")
	sys.AddLine(slack, load, 0.01, 0.1, 0, 0)

	driver := &newton.Driver{Tol: 1e-12, MaxIters: 5}
	ok, err := driver.Solve(sys)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)

	require.InDelta(s.T(), 0.9467, load.V, 1e-3)
	require.InDelta(s.T(), -2.93, load.Theta*180/math.Pi, 1e-1)
}

// TestFiveBusGlover is scenario S2: the Glover example 6.9 network must
// converge within 20 iterations with max|F| < 1e-12.
func (s *DriverSuite) TestFiveBusGlover() {
	sys := network.New("glover-6.9", 100)
	b1, err := sys.AddSlack(1.0, 15, 0, 0, 0, 0, 0, "B1")
	require.NoError(s.T(), err)
	b2 := sys.AddPQ(8.0, 2.8, 345, 0, 0, "B2")
	b3 := sys.AddPV(0.8-5.2, 1.05, 15, 0, 0, 0, "B3")
	b4 := sys.AddPQ(0, 0, 345, 0, 0, "B4")
	b5 := sys.AddPQ(0, 0, 345, 0, 0, "B5")

	sys.AddLine(b2, b4, 0.009, 0.1, 0, 1.72)
	sys.AddLine(b2, b5, 0.0045, 0.05, 0, 0.88)
	sys.AddLine(b4, b5, 0.00225, 0.025, 0, 0.44)
	sys.AddLine(b1, b5, 0.0015, 0.02, 0, 0)
	sys.AddLine(b3, b4, 0.00075, 0.01, 0, 0)

	driver := &newton.Driver{Tol: 1e-12, MaxIters: 20}
	ok, err := driver.Solve(sys)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)

	// Invariant 1: PQ mismatch under tolerance.
	for _, bus := range []*network.Bus{b2, b4, b5} {
		require.InDelta(s.T(), -bus.PL, bus.PToNetwork, 1e-6)
		require.InDelta(s.T(), -bus.QL, bus.QToNetwork, 1e-6)
	}
	// Invariant 2: PV voltage setpoint preserved exactly.
	require.Equal(s.T(), 1.05, b3.V)
	// Invariant 3: slack voltage/angle preserved exactly.
	require.Equal(s.T(), 1.0, b1.V)
	require.Equal(s.T(), 0.0, b1.Theta)
}

// TestConvergesIndependentlyOfPriorState is invariant 6: Solve always
// flat-starts internally, so an arbitrary prior bus state must converge
// to the same result as a freshly built system.
func (s *DriverSuite) TestConvergesIndependentlyOfPriorState() {
	build := func() (*network.System, *network.Bus) {
		sys := network.New("reset", 100)
		slack, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "B1")
		require.NoError(s.T(), err)
		load := sys.AddPQ(0.1, 0.05, 138, 0, 0, "B2")
		sys.AddLine(slack, load, 0.01, 0.1, 0, 0)
		return sys, load
	}

	driver := newton.New()

	freshSys, freshLoad := build()
	_, err := driver.Solve(freshSys)
	require.NoError(s.T(), err)

	perturbedSys, perturbedLoad := build()
	perturbedLoad.V = 0.5
	perturbedLoad.Theta = 1.0
	_, err = driver.Solve(perturbedSys)
	require.NoError(s.T(), err)

	require.InDelta(s.T(), freshLoad.V, perturbedLoad.V, 10*driver.Tol)
	require.InDelta(s.T(), freshLoad.Theta, perturbedLoad.Theta, 10*driver.Tol)
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}
