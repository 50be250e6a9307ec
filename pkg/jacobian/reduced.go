package jacobian

import (
	"fmt"

	"github.com/nordicgrid/powerflow/pkg/admittance"
	"github.com/nordicgrid/powerflow/pkg/linsolve"
	"github.com/nordicgrid/powerflow/pkg/network"
)

// Reduced is one Newton-Raphson iteration's worth of state: the mismatch
// vector F and the linear system used to solve J*delta = F. Unknown
// ordering follows spec.md section 4.2: x = [theta(all non-slack); |V|(PQ only)].
type Reduced struct {
	Jacobian *linsolve.JacobianMatrix
	S        []complex128 // S(V) at every bus, system order
	MaxAbsF  float64
}

// Evaluate computes S(V), the analytic partials, and stamps the reduced
// real Jacobian and mismatch vector for the current bus voltages.
func Evaluate(sys *network.System, y admittance.Matrix) (*Reduced, error) {
	n := len(sys.Buses)
	m := len(sys.PQBuses())
	size := (n - 1) + m // angles for all non-slack buses, magnitudes for PQ buses only

	jac, err := linsolve.New(size)
	if err != nil {
		return nil, fmt.Errorf("jacobian: allocating reduced system: %w", err)
	}

	v := Voltages(sys)
	s := Power(y, v)
	dSdVm, dSdVa := Partials(y, v)

	// Mismatch: F = [Re(dS)_{1..N-1}; Im(dS)_{1..M}], dS = S(V) - S_injected,
	// S_injected_k = -PL_k - j*QL_k (loads are positive consumption).
	maxAbsF := 0.0
	for k := 1; k < n; k++ {
		bus := sys.Buses[k]
		sInjected := complex(-bus.PL, -bus.QL)
		dS := s[k] - sInjected
		row := k // rows 1..N-1 of the angle block map to jac row k (1-based: row k)
		jac.AddRHS(row, real(dS))
		if a := absf(real(dS)); a > maxAbsF {
			maxAbsF = a
		}
		if k <= m {
			jac.AddRHS((n - 1) + k, imag(dS))
			if a := absf(imag(dS)); a > maxAbsF {
				maxAbsF = a
			}
		}
	}

	// J11 = Re(dS/dTheta)[1:,1:], J12 = Re(dS/dVm)[1:,1:M+1]
	// J21 = Im(dS/dTheta)[1:M+1,1:], J22 = Im(dS/dVm)[1:M+1,1:M+1]
	for r := 1; r < n; r++ {
		jacRow := r
		for c := 1; c < n; c++ {
			jac.AddElement(jacRow, c, real(dSdVa[r][c]))
		}
		for c := 1; c <= m; c++ {
			jac.AddElement(jacRow, (n-1)+c, real(dSdVm[r][c]))
		}
	}
	for r := 1; r <= m; r++ {
		jacRow := (n - 1) + r
		for c := 1; c < n; c++ {
			jac.AddElement(jacRow, c, imag(dSdVa[r][c]))
		}
		for c := 1; c <= m; c++ {
			jac.AddElement(jacRow, (n-1)+c, imag(dSdVm[r][c]))
		}
	}

	return &Reduced{Jacobian: jac, S: s, MaxAbsF: maxAbsF}, nil
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
