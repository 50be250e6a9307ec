// Package metrics exposes solver activity as Prometheus collectors and
// serves them over HTTP, the same registry-plus-promhttp.HandlerFor
// pattern the rest of the pack uses for its own metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds every metric the solver and its outer-loop studies
// report. A zero Collectors is not usable; construct with NewCollectors.
type Collectors struct {
	registry *prometheus.Registry

	SolveDuration   *prometheus.HistogramVec
	Iterations      *prometheus.HistogramVec
	SolvesTotal     *prometheus.CounterVec
	NonConvergences *prometheus.CounterVec
}

// NewCollectors builds and registers the solver's metrics on a fresh registry.
func NewCollectors() *Collectors {
	c := &Collectors{registry: prometheus.NewRegistry()}

	c.SolveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powerflow_solve_duration_seconds",
		Help:    "Wall-clock time of a single Newton-Raphson solve.",
		Buckets: prometheus.DefBuckets,
	}, []string{"study"})

	c.Iterations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powerflow_solve_iterations",
		Help:    "Newton-Raphson iterations used by a single solve.",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 12, 20, 30, 50},
	}, []string{"study"})

	c.SolvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerflow_solves_total",
		Help: "Total solves attempted, labeled by study kind.",
	}, []string{"study"})

	c.NonConvergences = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerflow_non_convergences_total",
		Help: "Total solves that failed to converge, labeled by study kind.",
	}, []string{"study"})

	c.registry.MustRegister(c.SolveDuration, c.Iterations, c.SolvesTotal, c.NonConvergences)
	return c
}

// ObserveSolve records the outcome of one solve under the given study
// label ("solve", "loadability", "contingency").
func (c *Collectors) ObserveSolve(study string, seconds float64, iterations int, converged bool) {
	c.SolveDuration.WithLabelValues(study).Observe(seconds)
	c.Iterations.WithLabelValues(study).Observe(float64(iterations))
	c.SolvesTotal.WithLabelValues(study).Inc()
	if !converged {
		c.NonConvergences.WithLabelValues(study).Inc()
	}
}

// Serve starts an HTTP server exposing /metrics on addr and blocks until
// ctx is cancelled, then shuts the server down gracefully.
func (c *Collectors) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics: serving on %s: %w", addr, err)
	}
}
