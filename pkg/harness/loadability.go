// Package harness implements the outer-loop studies of spec.md section
// 4.4: continuation-style load scaling (loadability) and N-1 branch
// contingency screening, each re-solving a single network repeatedly
// while mutating its state between solves.
package harness

import (
	"log/slog"

	"github.com/nordicgrid/powerflow/internal/consts"
	"github.com/nordicgrid/powerflow/pkg/network"
	"github.com/nordicgrid/powerflow/pkg/newton"
)

// LoadabilityPoint is one converged step of the loadability curve: the
// scaling factor lambda and, for each monitored bus, its solved |V|.
type LoadabilityPoint struct {
	Lambda     float64
	Voltages   map[string]float64 // bus name -> |V| pu
}

// Loadability runs the continuation-style load-scaling study of
// spec.md section 4.4 against buses, starting from whatever state sys
// is already in (normally a converged base case). It solves repeatedly,
// scaling PL/QL of buses by an increasing lambda, until the driver
// fails to converge - the nose point / voltage-collapse boundary. The
// returned curve does not include the failed step.
func Loadability(sys *network.System, driver *newton.Driver, buses []*network.Bus, step float64) []LoadabilityPoint {
	if step == 0 {
		step = consts.DefaultLoadStep
	}
	log := slog.Default()
	if driver != nil && driver.Logger != nil {
		log = driver.Logger
	}

	var curve []LoadabilityPoint
	lambda := 1.0

	for {
		ok, err := driver.Solve(sys)
		if err != nil || !ok {
			log.Info("loadability study terminated", "lambda", lambda, "converged", ok, "error", err)
			break
		}

		point := LoadabilityPoint{Lambda: lambda, Voltages: make(map[string]float64, len(buses))}
		for _, b := range buses {
			point.Voltages[b.Name] = b.V
		}
		curve = append(curve, point)
		log.Debug("loadability step converged", "lambda", lambda)

		// Remove the previous scaling, advance lambda, apply the new scaling.
		for _, b := range buses {
			b.PL /= lambda
			b.QL /= lambda
		}
		lambda += step
		for _, b := range buses {
			b.PL *= lambda
			b.QL *= lambda
		}
	}

	return curve
}
