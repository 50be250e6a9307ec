package jacobian_test

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nordicgrid/powerflow/pkg/admittance"
	"github.com/nordicgrid/powerflow/pkg/jacobian"
	"github.com/nordicgrid/powerflow/pkg/network"
)

func twoBusFlatStart(t *testing.T) (*network.System, admittance.Matrix) {
	t.Helper()
	sys := network.New("two-bus", 100)
	slack, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "B1")
	require.NoError(t, err)
	load := sys.AddPQ(0.5, 0.1, 138, 0, 0, "B2")
	sys.AddLine(slack, load, 0.01, 0.1, 0, 0)
	return sys, admittance.Build(sys)
}

func TestPowerAtFlatStartIsZeroInjectionOnLoadBus(t *testing.T) {
	sys, y := twoBusFlatStart(t)
	v := jacobian.Voltages(sys)
	// Flat start: both buses at 1.0<0, so there is no angle difference
	// and the line carries no real or reactive power.
	s := jacobian.Power(y, v)
	require.InDelta(t, 0, real(s[1]), 1e-9)
	require.InDelta(t, 0, imag(s[1]), 1e-9)
}

func TestInjectionMatchesPower(t *testing.T) {
	sys, y := twoBusFlatStart(t)
	v := jacobian.Voltages(sys)
	i := jacobian.Injection(y, v)
	s := jacobian.Power(y, v)
	for k := range v {
		require.InDelta(t, real(s[k]), real(v[k]*cmplx.Conj(i[k])), 1e-12)
	}
}

func TestPartialsDimensions(t *testing.T) {
	sys, y := twoBusFlatStart(t)
	v := jacobian.Voltages(sys)
	dSdVm, dSdVa := jacobian.Partials(y, v)
	require.Len(t, dSdVm, len(sys.Buses))
	require.Len(t, dSdVa, len(sys.Buses))
	for _, row := range dSdVm {
		require.Len(t, row, len(sys.Buses))
	}
}
