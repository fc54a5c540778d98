package trainer

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics writes training progress as a Prometheus text exposition file,
// suitable for a node exporter textfile collector.
type Metrics struct {
	path     string
	registry *prometheus.Registry

	tokens   prometheus.Gauge
	progress prometheus.Gauge
	loss     prometheus.Gauge
	lr       prometheus.Gauge
	speed    prometheus.Gauge
}

// NewMetrics prepares a sink that rewrites path on every observation.
func NewMetrics(path string) *Metrics {
	m := &Metrics{
		path:     path,
		registry: prometheus.NewRegistry(),
		tokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fasttext_train_tokens",
			Help: "Tokens consumed by all workers so far.",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fasttext_train_progress_ratio",
			Help: "Consumed share of the token budget.",
		}),
		loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fasttext_train_loss",
			Help: "Average loss of the reporting worker.",
		}),
		lr: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fasttext_train_learning_rate",
			Help: "Current learning rate.",
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fasttext_train_words_per_second_per_thread",
			Help: "Training throughput per worker.",
		}),
	}
	m.registry.MustRegister(m.tokens, m.progress, m.loss, m.lr, m.speed)
	return m
}

// Observe records s and rewrites the file.
func (m *Metrics) Observe(s Snapshot) error {
	m.tokens.Set(float64(s.Tokens))
	m.progress.Set(s.Progress)
	m.loss.Set(float64(s.Loss))
	m.lr.Set(float64(s.LearningRate))
	m.speed.Set(s.WordsPerSec)
	if m.path == "" {
		return nil
	}
	return errors.Wrap(prometheus.WriteToTextfile(m.path, m.registry), "write metrics")
}
