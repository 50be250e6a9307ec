// Package config loads solver, loadability, logging, and metrics
// settings from YAML, with command-line flags overriding the file -
// the same Load/FromFile/RegisterFlags split the rest of the pack uses
// for its own application configuration.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/nordicgrid/powerflow/internal/consts"
)

const (
	LogLevelFlag      = "log-level"
	LogFormatFlag     = "log-format"
	TolFlag           = "tol"
	MaxItersFlag      = "max-iters"
	LoadStepFlag      = "load-step"
	MetricsEnableFlag = "metrics"
	MetricsListenFlag = "metrics-listen"
)

type (
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	Solver struct {
		Tol      float64 `yaml:"tol"`
		MaxIters int     `yaml:"maxIters"`
	}

	Loadability struct {
		Step  float64  `yaml:"step"`
		Buses []string `yaml:"buses"`
	}

	Metrics struct {
		Enabled       bool   `yaml:"enabled"`
		ListenAddress string `yaml:"listenAddress"`
	}

	Config struct {
		Log         Log         `yaml:"log"`
		Solver      Solver      `yaml:"solver"`
		Loadability Loadability `yaml:"loadability"`
		Metrics     Metrics     `yaml:"metrics"`
	}
)

// DefaultConfig returns a Config with the solver defaults of
// internal/consts and a quiet, text-logging, metrics-off ambient setup.
func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Solver: Solver{
			Tol:      consts.DefaultTol,
			MaxIters: consts.DefaultMaxIters,
		},
		Loadability: Loadability{
			Step: consts.DefaultLoadStep,
		},
		Metrics: Metrics{
			Enabled:       false,
			ListenAddress: ":9090",
		},
	}
}

// Load reads YAML configuration from r on top of DefaultConfig.
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing: %w", err)
		}
	}
	return cfg, nil
}

// FromFile loads configuration from a YAML file on disk.
func FromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %q: %w", path, err)
	}
	defer file.Close()
	return Load(file)
}

// UpdaterFn applies command-line overrides onto a loaded Config.
type UpdaterFn func(*Config) error

// RegisterFlags registers the CLI flags on app and returns an UpdaterFn
// that copies the flags the user actually set onto a Config loaded from
// file, so flags only ever override, never reset to kingpin defaults.
func RegisterFlags(app *kingpin.Application) UpdaterFn {
	flagsSet := map[string]bool{}
	app.PreAction(func(ctx *kingpin.ParseContext) error {
		flagsSet = map[string]bool{}
		for _, element := range ctx.Elements {
			if flag, ok := element.Clause.(*kingpin.FlagClause); ok && element.Value != nil {
				flagsSet[flag.Model().Name] = true
			}
		}
		return nil
	})

	logLevel := app.Flag(LogLevelFlag, "Logging level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	logFormat := app.Flag(LogFormatFlag, "Logging format: text or json").Default("text").Enum("text", "json")
	tol := app.Flag(TolFlag, "Mismatch tolerance, per-unit").Default(fmt.Sprintf("%g", consts.DefaultTol)).Float64()
	maxIters := app.Flag(MaxItersFlag, "Newton-Raphson iteration cap").Default(fmt.Sprintf("%d", consts.DefaultMaxIters)).Int()
	loadStep := app.Flag(LoadStepFlag, "Loadability lambda increment").Default(fmt.Sprintf("%g", consts.DefaultLoadStep)).Float64()
	metricsEnabled := app.Flag(MetricsEnableFlag, "Serve Prometheus metrics").Default("false").Bool()
	metricsListen := app.Flag(MetricsListenFlag, "Metrics HTTP listen address").Default(":9090").String()

	return func(cfg *Config) error {
		if flagsSet[LogLevelFlag] {
			cfg.Log.Level = *logLevel
		}
		if flagsSet[LogFormatFlag] {
			cfg.Log.Format = *logFormat
		}
		if flagsSet[TolFlag] {
			cfg.Solver.Tol = *tol
		}
		if flagsSet[MaxItersFlag] {
			cfg.Solver.MaxIters = *maxIters
		}
		if flagsSet[LoadStepFlag] {
			cfg.Loadability.Step = *loadStep
		}
		if flagsSet[MetricsEnableFlag] {
			cfg.Metrics.Enabled = *metricsEnabled
		}
		if flagsSet[MetricsListenFlag] {
			cfg.Metrics.ListenAddress = *metricsListen
		}
		return nil
	}
}
