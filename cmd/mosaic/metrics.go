package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wbrown/img2mosaic"
)

// runMetrics collects the outcome of one build for a node exporter
// textfile collector.
type runMetrics struct {
	registry *prometheus.Registry

	stats     *prometheus.GaugeVec
	tiles     prometheus.Gauge
	distinct  prometheus.Gauge
	durations *prometheus.GaugeVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		stats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mosaic",
			Name:      "selection_events",
			Help:      "Tile selection counters of the last run, by kind.",
		}, []string{"kind"}),
		tiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mosaic",
			Name:      "catalog_tiles",
			Help:      "Tiles in the catalog of the last run.",
		}),
		distinct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mosaic",
			Name:      "distinct_tiles_used",
			Help:      "Distinct tiles placed by the last run.",
		}),
		durations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mosaic",
			Name:      "phase_seconds",
			Help:      "Wall time of each phase of the last run.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(m.stats, m.tiles, m.distinct, m.durations)
	return m
}

func (m *runMetrics) observeRun(catalogSize int, mosaic *img2mosaic.Mosaic) {
	s := mosaic.Stats
	m.tiles.Set(float64(catalogSize))
	m.distinct.Set(float64(mosaic.Ledger.Len()))
	m.stats.WithLabelValues("cells").Set(float64(s.Cells))
	m.stats.WithLabelValues("queries").Set(float64(s.Queries))
	m.stats.WithLabelValues("spatial_rejects").Set(float64(s.SpatialRejects))
	m.stats.WithLabelValues("cap_discards").Set(float64(s.CapDiscards))
	m.stats.WithLabelValues("soft_violations").Set(float64(s.SoftViolations))
	m.stats.WithLabelValues("fallbacks").Set(float64(s.Fallbacks))
}

func (m *runMetrics) observePhase(phase string, d time.Duration) {
	m.durations.WithLabelValues(phase).Set(d.Seconds())
}

func (m *runMetrics) write(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
