// Package metrics records sync outcomes in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/reconcile"
)

const namespace = "aws_secrets"

// SyncMetrics holds the gauges for one sync run. Each instance owns its
// registry so a run never picks up process-wide collectors.
type SyncMetrics struct {
	registry *prometheus.Registry

	keys       *prometheus.GaugeVec
	targetKeys prometheus.Gauge
	applied    prometheus.Gauge
	duration   prometheus.Gauge
	lastRun    prometheus.Gauge
}

// NewSyncMetrics creates and registers the sync gauges.
func NewSyncMetrics() *SyncMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &SyncMetrics{
		registry: reg,
		keys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sync_keys",
				Help:      "Keys touched by the last sync, by change type",
			},
			[]string{"change"},
		),
		targetKeys: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_target_keys",
			Help:      "Number of keys in the secret after the last sync",
		}),
		applied: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_applied",
			Help:      "1 if the last sync wrote to the secret store, 0 for dry runs",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of the last sync",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_run_timestamp_seconds",
			Help:      "Unix time the last sync finished",
		}),
	}
}

// Registry exposes the underlying registry (for tests and custom exporters).
func (m *SyncMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the result of a sync run.
func (m *SyncMetrics) Observe(res reconcile.Result, took time.Duration, finished time.Time) {
	m.keys.WithLabelValues("added").Set(float64(len(res.Added)))
	m.keys.WithLabelValues("changed").Set(float64(len(res.Changed)))
	m.keys.WithLabelValues("removed").Set(float64(len(res.Removed)))
	m.targetKeys.Set(float64(res.Target.Len()))
	if res.Applied {
		m.applied.Set(1)
	} else {
		m.applied.Set(0)
	}
	m.duration.Set(took.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes the gathered metrics to path.
func (m *SyncMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Normalize(errors.KindFilesystem, "write metrics file", err)
	}
	return nil
}
