// Package jacobian computes complex bus power injections and the
// analytic partial derivatives used to build the reduced real Jacobian
// for Newton-Raphson power flow (spec.md section 4.2).
package jacobian

import (
	"math/cmplx"

	"github.com/nordicgrid/powerflow/pkg/admittance"
	"github.com/nordicgrid/powerflow/pkg/network"
)

// Voltages returns the complex voltage phasor of every bus, in system order.
func Voltages(sys *network.System) []complex128 {
	v := make([]complex128, len(sys.Buses))
	for i, bus := range sys.Buses {
		v[i] = bus.PhasorV()
	}
	return v
}

// Injection computes the complex current injection I = Y*V.
func Injection(y admittance.Matrix, v []complex128) []complex128 {
	n := len(v)
	i := make([]complex128, n)
	for r := 0; r < n; r++ {
		var sum complex128
		for c := 0; c < n; c++ {
			sum += y[r][c] * v[c]
		}
		i[r] = sum
	}
	return i
}

// Power computes the complex power injected into the network at every
// bus: S(V) = diag(V) * conj(Y*V).
func Power(y admittance.Matrix, v []complex128) []complex128 {
	i := Injection(y, v)
	s := make([]complex128, len(v))
	for k := range v {
		s[k] = v[k] * cmplx.Conj(i[k])
	}
	return s
}

// Partials returns the Matpower-style complex sensitivities:
//
//	dS/d|V| = diag(V)*conj(Y*diag(V/|V|)) + conj(diag(I))*diag(V/|V|)
//	dS/dTheta = j*diag(V)*conj(diag(I) - Y*diag(V))
func Partials(y admittance.Matrix, v []complex128) (dSdVm, dSdVa [][]complex128) {
	n := len(v)
	i := Injection(y, v)

	vNorm := make([]complex128, n)
	for k, vk := range v {
		vNorm[k] = vk / complex(cmplx.Abs(vk), 0)
	}

	dSdVm = make([][]complex128, n)
	dSdVa = make([][]complex128, n)
	for r := 0; r < n; r++ {
		dSdVm[r] = make([]complex128, n)
		dSdVa[r] = make([]complex128, n)
	}

	// conj(Y*diag(Vnorm))[r][c] = conj(Y[r][c]*Vnorm[c])
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			yVnorm := cmplx.Conj(y[r][c] * vNorm[c])
			dSdVm[r][c] = v[r] * yVnorm
		}
		dSdVm[r][r] += cmplx.Conj(i[r]) * vNorm[r]
	}

	// diag(I) - Y*diag(V), then j*diag(V)*conj(...)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			term := -y[r][c] * v[c]
			if r == c {
				term += i[r]
			}
			dSdVa[r][c] = complex(0, 1) * v[r] * cmplx.Conj(term)
		}
	}

	return dSdVm, dSdVa
}

