// Package telemetry exports setup numerics as prometheus metrics.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/relic/internal/ncdm"
)

// Metrics implements ncdm.Observer on its own registry so that runs do not
// share state.
type Metrics struct {
	reg *prometheus.Registry

	gridsBuilt     *prometheus.CounterVec
	gridNodes      *prometheus.GaugeVec
	nodeCount      *prometheus.HistogramVec
	massIterations prometheus.Histogram
	species        prometheus.Gauge
	omega0         prometheus.Gauge
	neff           prometheus.Gauge
	setupDuration  prometheus.Gauge
}

var _ ncdm.Observer = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		gridsBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "relic_quadrature_grids_total",
			Help: "Momentum grids built, by grid kind",
		}, []string{"grid"}),
		gridNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relic_quadrature_nodes",
			Help: "Node count of each species grid",
		}, []string{"species", "grid"}),
		nodeCount: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relic_quadrature_node_count",
			Help:    "Distribution of grid sizes",
			Buckets: []float64{2, 5, 10, 20, 50, 100, 150, 250},
		}, []string{"grid"}),
		massIterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "relic_mass_solver_iterations",
			Help:    "Newton iterations to recover a mass from a density",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		species: f.NewGauge(prometheus.GaugeOpts{
			Name: "relic_species",
			Help: "Number of initialized species",
		}),
		omega0: f.NewGauge(prometheus.GaugeOpts{
			Name: "relic_omega0",
			Help: "Summed density fraction today",
		}),
		neff: f.NewGauge(prometheus.GaugeOpts{
			Name: "relic_neff",
			Help: "Summed effective neutrino number",
		}),
		setupDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "relic_setup_duration_seconds",
			Help: "Wall time of registry creation",
		}),
	}
}

func (m *Metrics) GridBuilt(species int, grid string, nodes int) {
	m.gridsBuilt.WithLabelValues(grid).Inc()
	m.gridNodes.WithLabelValues(strconv.Itoa(species), grid).Set(float64(nodes))
	m.nodeCount.WithLabelValues(grid).Observe(float64(nodes))
}

func (m *Metrics) MassSolved(species int, iterations int) {
	m.massIterations.Observe(float64(iterations))
}

// Record sets the registry-wide gauges.
func (m *Metrics) Record(r *ncdm.Registry, setup time.Duration) {
	m.setupDuration.Set(setup.Seconds())
	if r == nil {
		m.species.Set(0)
		return
	}
	m.species.Set(float64(r.Len()))
	m.omega0.Set(r.Omega0())
	m.neff.Set(r.Neff())
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
