// Command powerflow solves balanced AC transmission networks with
// Newton-Raphson power flow, and runs the loadability and N-1
// contingency studies built on top of it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/nordicgrid/powerflow/internal/consts"
	"github.com/nordicgrid/powerflow/internal/logging"
	"github.com/nordicgrid/powerflow/pkg/config"
	"github.com/nordicgrid/powerflow/pkg/harness"
	"github.com/nordicgrid/powerflow/pkg/metrics"
	"github.com/nordicgrid/powerflow/pkg/netlist"
	"github.com/nordicgrid/powerflow/pkg/network"
	"github.com/nordicgrid/powerflow/pkg/newton"
	"github.com/nordicgrid/powerflow/pkg/report"
)

func main() {
	app := kingpin.New("powerflow", "Newton-Raphson power flow for balanced AC transmission networks.")
	configFile := app.Flag("config", "YAML configuration file").String()
	sBase := app.Flag("sbase", "System base power, MVA").Default(fmt.Sprintf("%g", consts.DefaultSBase)).Float64()
	updateFlags := config.RegisterFlags(app)

	solveCmd := app.Command("solve", "Solve a single base-case power flow.")
	solveNetlist := solveCmd.Arg("netlist", "Network data file").Required().String()

	loadCmd := app.Command("loadability", "Run a continuation-style loadability study.")
	loadNetlist := loadCmd.Arg("netlist", "Network data file").Required().String()
	loadBuses := loadCmd.Arg("bus", "Bus(es) to scale and monitor").Required().Strings()

	contingencyCmd := app.Command("contingency", "Run N-1 line contingency screening.")
	contingencyNetlist := contingencyCmd.Arg("netlist", "Network data file").Required().String()

	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("%v", err)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		cfg, err = config.FromFile(*configFile)
		if err != nil {
			kingpin.Fatalf("%v", err)
		}
	}
	if err := updateFlags(cfg); err != nil {
		kingpin.Fatalf("%v", err)
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	driver := &newton.Driver{Tol: cfg.Solver.Tol, MaxIters: cfg.Solver.MaxIters, Logger: log}

	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		cancel()
	}()

	var collectors *metrics.Collectors
	if cfg.Metrics.Enabled {
		collectors = metrics.NewCollectors()
		go func() {
			if err := collectors.Serve(ctx, cfg.Metrics.ListenAddress); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	switch cmd {
	case solveCmd.FullCommand():
		runSolve(*solveNetlist, *sBase, driver, collectors)
	case loadCmd.FullCommand():
		runLoadability(*loadNetlist, *sBase, *loadBuses, cfg.Loadability.Step, driver, collectors)
	case contingencyCmd.FullCommand():
		runContingency(*contingencyNetlist, *sBase, driver, collectors)
	}
}

func loadSystem(path string, sBase float64) *network.System {
	file, err := os.Open(path)
	if err != nil {
		kingpin.Fatalf("opening netlist %q: %v", path, err)
	}
	defer file.Close()

	sys, err := netlist.Parse(file, path, sBase)
	if err != nil {
		kingpin.Fatalf("parsing netlist %q: %v", path, err)
	}
	return sys
}

func runSolve(path string, sBase float64, driver *newton.Driver, collectors *metrics.Collectors) {
	sys := loadSystem(path, sBase)
	ok, err := driver.Solve(sys)
	if collectors != nil {
		collectors.ObserveSolve("solve", 0, 0, ok)
	}
	if err != nil {
		kingpin.Fatalf("%v", err)
	}
	report.WriteBusSummary(os.Stdout, sys)
	if !ok {
		os.Exit(1)
	}
}

func runLoadability(path string, sBase float64, busNames []string, step float64, driver *newton.Driver, collectors *metrics.Collectors) {
	sys := loadSystem(path, sBase)
	if ok, err := driver.Solve(sys); err != nil || !ok {
		kingpin.Fatalf("base case did not converge: %v", err)
	}

	buses := make([]*network.Bus, 0, len(busNames))
	for _, name := range busNames {
		bus := findBus(sys, name)
		if bus == nil {
			kingpin.Fatalf("loadability: unknown bus %q", name)
		}
		buses = append(buses, bus)
	}

	curve := harness.Loadability(sys, driver, buses, step)
	if collectors != nil {
		collectors.ObserveSolve("loadability", 0, 0, len(curve) > 0)
	}
	report.WriteLoadabilityCurve(os.Stdout, curve, busNames)
}

func runContingency(path string, sBase float64, driver *newton.Driver, collectors *metrics.Collectors) {
	sys := loadSystem(path, sBase)
	if ok, err := driver.Solve(sys); err != nil || !ok {
		kingpin.Fatalf("base case did not converge: %v", err)
	}

	results := harness.ScreenN1(sys, driver)
	if collectors != nil {
		for _, r := range results {
			collectors.ObserveSolve("contingency", 0, 0, r.Converged)
		}
	}
	report.WriteContingencyScreen(os.Stdout, results)
}

func findBus(sys *network.System, name string) *network.Bus {
	for _, b := range sys.Buses {
		if b.Name == name {
			return b
		}
	}
	return nil
}
