// Package report renders solved network state, loadability curves, and
// contingency screening results as tabulated text, the Go equivalent of
// the original System.__str__/get_bus_load/get_bus_generation methods.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nordicgrid/powerflow/pkg/harness"
	"github.com/nordicgrid/powerflow/pkg/network"
)

const (
	loadTol = 1e-6 // pu below which a bus load is reported as "-"
	genTol  = 1e-4 // MW/Mvar below which a bus generation is reported as "-"
)

// WriteBusSummary renders one row per bus: index, name, type, nominal
// voltage, solved voltage/angle, and net load/generation in MW/Mvar.
// Non-PQ buses show a generation figure unless it is below genTol, in
// which case it is shown as "-"; PQ buses never show one, matching
// get_bus_generation's bus_type guard.
func WriteBusSummary(out io.Writer, sys *network.System) {
	rows := make([][]string, 0, len(sys.Buses))
	for i, bus := range sys.Buses {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			bus.Name,
			bus.Kind.String(),
			fmt.Sprintf("%.1f", bus.Vb),
			fmt.Sprintf("%.4f", bus.V),
			fmt.Sprintf("%.2f", bus.Theta*180/math.Pi),
			formatQuantity(sys.SBase*bus.PL, sys.SBase*loadTol),
			formatQuantity(sys.SBase*bus.QL, sys.SBase*loadTol),
			formatGeneration(sys, bus, bus.PToNetwork),
			formatGeneration(sys, bus, bus.QToNetwork),
		})
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header([]string{"Bus", "Name", "Type", "Vb (kV)", "V (pu)", "Theta (deg)",
		"Load (MW)", "Load (Mvar)", "Gen (MW)", "Gen (Mvar)"})
	_ = table.Bulk(rows)

	name := sys.Name
	if name == "" {
		name = fmt.Sprintf("%d-bus system", len(sys.Buses))
	}
	fmt.Fprintf(out, "\n%s\n\nStatus: %s\n\n", name, sys.Status)
	_ = table.Render()
}

func formatQuantity(v, tol float64) string {
	if math.Abs(v) <= tol {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

// formatGeneration applies the get_bus_generation(attr) rule: PQ buses
// never report generation, everyone else reports sys.SBase * networkPower,
// elided to "-" below genTol.
func formatGeneration(sys *network.System, bus *network.Bus, networkPower float64) string {
	if bus.Kind == network.PQ {
		return "-"
	}
	v := sys.SBase * networkPower
	if math.Abs(v) <= genTol {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

// WriteLoadabilityCurve renders one row per converged continuation step.
func WriteLoadabilityCurve(out io.Writer, curve []harness.LoadabilityPoint, buses []string) {
	header := append([]string{"Lambda"}, buses...)
	rows := make([][]string, 0, len(curve))
	for _, point := range curve {
		row := make([]string, 0, len(buses)+1)
		row = append(row, fmt.Sprintf("%.4f", point.Lambda))
		for _, name := range buses {
			row = append(row, fmt.Sprintf("%.4f", point.Voltages[name]))
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header(header)
	_ = table.Bulk(rows)
	_ = table.Render()
}

// WriteContingencyScreen renders one row per screened line.
func WriteContingencyScreen(out io.Writer, results []harness.ContingencyResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		converged := "yes"
		if !r.Converged {
			converged = "no"
		}
		rows = append(rows, []string{r.Name, converged, r.Status})
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignLeft
	})
	table.Header([]string{"Line", "Converged", "Status"})
	_ = table.Bulk(rows)
	_ = table.Render()
}
