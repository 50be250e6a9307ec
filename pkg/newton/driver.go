// Package newton implements the Newton-Raphson power-flow driver:
// admittance assembly, flat start, mismatch/Jacobian iteration to
// tolerance, and write-back of solved bus quantities (spec.md section 4.3).
package newton

import (
	"fmt"
	"log/slog"

	"github.com/nordicgrid/powerflow/internal/consts"
	"github.com/nordicgrid/powerflow/pkg/admittance"
	"github.com/nordicgrid/powerflow/pkg/jacobian"
	"github.com/nordicgrid/powerflow/pkg/network"
)

// Driver runs the Newton-Raphson iteration for a System. A zero value
// is usable; Tol and MaxIters default per spec.md section 4.3.
type Driver struct {
	Tol      float64
	MaxIters int
	Logger   *slog.Logger
}

// New returns a Driver with spec.md defaults.
func New() *Driver {
	return &Driver{Tol: consts.DefaultTol, MaxIters: consts.DefaultMaxIters, Logger: slog.Default()}
}

func (d *Driver) tol() float64 {
	if d.Tol == 0 {
		return consts.DefaultTol
	}
	return d.Tol
}

func (d *Driver) maxIters() int {
	if d.MaxIters == 0 {
		return consts.DefaultMaxIters
	}
	return d.MaxIters
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Solve runs one Newton-Raphson power flow to convergence or MaxIters,
// returning true iff it converged. The system's bus voltages are
// mutated in place (flat start, then corrected each iteration). On a
// return with a nil error, every bus's PToNetwork/QToNetwork holds the
// solved injection and sys.Status describes the outcome (spec.md section
// 4.3, section 7). When an error is returned, PToNetwork/QToNetwork are
// not updated; after a failed Jacobian solve sys.Status reads
// "solver failure: ...", and after a validation failure it is unchanged.
func (d *Driver) Solve(sys *network.System) (bool, error) {
	if err := sys.Validate(); err != nil {
		return false, fmt.Errorf("newton: %w", err)
	}

	y := admittance.Build(sys)
	flatStart(sys)

	tol := d.tol()
	maxIters := d.maxIters()
	log := d.logger()

	var (
		red  *jacobian.Reduced
		err  error
		iter int
	)
	for iter = 0; iter < maxIters; iter++ {
		red, err = jacobian.Evaluate(sys, y)
		if err != nil {
			return false, fmt.Errorf("newton: %w", err)
		}
		log.Debug("newton-raphson iteration", "iter", iter, "max_abs_mismatch", red.MaxAbsF)
		if red.MaxAbsF <= tol {
			break
		}

		if err := red.Jacobian.Solve(); err != nil {
			sys.Status = fmt.Sprintf("solver failure: %v", err)
			log.Warn("jacobian solve failed", "iter", iter, "error", err)
			return false, fmt.Errorf("newton: %w", err)
		}
		applyCorrection(sys, red.Jacobian.Solution())
	}

	writeNetworkPower(sys, y)

	if red != nil && red.MaxAbsF <= tol {
		tolW := tol * sys.SBase * 1e6
		sys.Status = fmt.Sprintf("solved (max |F| < %g W) in %d iterations", tolW, iter)
		log.Info("power flow converged", "iterations", iter, "max_abs_mismatch", red.MaxAbsF)
		return true, nil
	}

	sys.Status = fmt.Sprintf("non-convergent after %d iterations", iter)
	log.Warn("power flow did not converge", "iterations", iter)
	return false, nil
}

// flatStart sets theta=0 for all non-slack buses and |V|=1 for all PQ
// buses; slack V/theta and PV V are left at their input values.
func flatStart(sys *network.System) {
	for _, bus := range sys.NonSlackBuses() {
		bus.Theta = 0
	}
	for _, bus := range sys.PQBuses() {
		bus.V = 1
	}
}

// applyCorrection writes x <- x - delta back onto bus angles (all
// non-slack) and magnitudes (PQ only), per spec.md section 4.3 step 4.
func applyCorrection(sys *network.System, delta []float64) {
	nonSlack := sys.NonSlackBuses()
	for i, bus := range nonSlack {
		bus.Theta -= delta[i+1]
	}
	pq := sys.PQBuses()
	offset := len(nonSlack)
	for i, bus := range pq {
		bus.V -= delta[offset+i+1]
	}
}

func writeNetworkPower(sys *network.System, y admittance.Matrix) {
	v := jacobian.Voltages(sys)
	s := jacobian.Power(y, v)
	for i, bus := range sys.Buses {
		bus.PToNetwork = real(s[i])
		bus.QToNetwork = imag(s[i])
	}
}
