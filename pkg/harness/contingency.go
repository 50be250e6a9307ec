package harness

import (
	"log/slog"

	"github.com/nordicgrid/powerflow/pkg/network"
	"github.com/nordicgrid/powerflow/pkg/newton"
)

// ContingencyResult is the outcome of removing a single line.
type ContingencyResult struct {
	Line      *network.Line
	Name      string // "<from>-<to>", for reporting
	Converged bool
	Status    string
}

// ScreenN1 runs the N-1 contingency screening study of spec.md section
// 4.4: for each line in turn, disable it, re-solve, record whether
// convergence was lost, then restore it before moving to the next line.
// The solver's boolean return is authoritative; ScreenN1 makes no
// assumption about which lines are critical ahead of time.
func ScreenN1(sys *network.System, driver *newton.Driver) []ContingencyResult {
	log := slog.Default()
	if driver != nil && driver.Logger != nil {
		log = driver.Logger
	}

	results := make([]ContingencyResult, 0, len(sys.Lines))
	for _, line := range sys.Lines {
		line.InOperation = false

		ok, _ := driver.Solve(sys)
		name := line.FromBus.Name + "-" + line.ToBus.Name
		log.Info("contingency screened", "line", name, "converged", ok)
		results = append(results, ContingencyResult{
			Line:      line,
			Name:      name,
			Converged: ok,
			Status:    sys.Status,
		})

		line.InOperation = true
	}
	return results
}
