package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vidup"

// Recorder implements session.Observer on top of Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	uploads    *prometheus.CounterVec
	polls      *prometheus.CounterVec
	terminal   *prometheus.CounterVec
	processing prometheus.Histogram
	blobURLs   prometheus.Gauge
}

// NewRecorder creates a recorder registered on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Total number of upload attempts by result",
			},
			[]string{"result"}, // "accepted", "rejected", "error"
		),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_polls_total",
				Help:      "Total number of status requests by outcome",
			},
			[]string{"outcome"},
		),
		terminal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_terminal_total",
				Help:      "Total number of sessions that reached a terminal state",
			},
			[]string{"state"},
		),
		processing: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_seconds",
				Help:      "Time from accepted upload to terminal state",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		blobURLs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "blob_urls_live",
				Help:      "Number of object URLs currently held",
			},
		),
	}
	r.registry.MustRegister(r.uploads, r.polls, r.terminal, r.processing, r.blobURLs)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveUpload(result string) {
	r.uploads.WithLabelValues(result).Inc()
}

func (r *Recorder) ObservePoll(outcome string) {
	r.polls.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveTerminal(state string, elapsed time.Duration) {
	r.terminal.WithLabelValues(state).Inc()
	if elapsed > 0 {
		r.processing.Observe(elapsed.Seconds())
	}
}

func (r *Recorder) ObserveBlobURLs(live int) {
	r.blobURLs.Set(float64(live))
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
