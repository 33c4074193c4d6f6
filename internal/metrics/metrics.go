// Package metrics counts provider calls, retries, fallbacks and chunk
// outcomes of a translation run. Counters live in a per-run registry that
// can be dumped in the Prometheus text format at the end of the run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call modes and statuses used as label values.
const (
	ModeBatch = "batch"
	ModeItem  = "item"

	StatusSuccess = "success"
	StatusError   = "error"

	ChunkTranslated = "translated"
	ChunkCached     = "cached"
)

// Metrics holds the counters of one run.
type Metrics struct {
	registry *prometheus.Registry

	providerCalls *prometheus.CounterVec
	retries       prometheus.Counter
	fallbacks     prometheus.Counter
	failedItems   prometheus.Counter
	chunks        *prometheus.CounterVec
	languages     *prometheus.CounterVec
	backoff       prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		providerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktranslate_provider_calls_total",
				Help: "Total number of calls made to the translation provider",
			},
			[]string{"mode", "status"},
		),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "decktranslate_batch_retries_total",
			Help: "Total number of batch calls repeated after a provider failure",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "decktranslate_fallbacks_total",
			Help: "Total number of batches translated item by item after retries ran out",
		}),
		failedItems: factory.NewCounter(prometheus.CounterOpts{
			Name: "decktranslate_failed_items_total",
			Help: "Total number of items substituted with an empty string",
		}),
		chunks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktranslate_chunks_total",
				Help: "Total number of chunks processed, by language and outcome",
			},
			[]string{"language", "outcome"},
		),
		languages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktranslate_languages_total",
				Help: "Total number of languages finished, by how they were finished",
			},
			[]string{"outcome"},
		),
		backoff: factory.NewCounter(prometheus.CounterOpts{
			Name: "decktranslate_wait_seconds_total",
			Help: "Total time spent in backoff and pacing waits",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordProviderCall counts one provider call.
func (m *Metrics) RecordProviderCall(mode string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.providerCalls.WithLabelValues(mode, status).Inc()
}

// RecordRetry counts a repeated batch call.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// RecordFallback counts a degraded per-item pass.
func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// RecordFailedItems counts items substituted with "".
func (m *Metrics) RecordFailedItems(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.failedItems.Add(float64(n))
}

// RecordChunk counts one chunk for a language.
func (m *Metrics) RecordChunk(language, outcome string) {
	if m == nil {
		return
	}
	m.chunks.WithLabelValues(language, outcome).Inc()
}

// RecordLanguage counts a finished language; outcome is ChunkCached for
// the complete-language fast path.
func (m *Metrics) RecordLanguage(outcome string) {
	if m == nil {
		return
	}
	m.languages.WithLabelValues(outcome).Inc()
}

// RecordWait adds seconds spent sleeping.
func (m *Metrics) RecordWait(seconds float64) {
	if m == nil || seconds <= 0 {
		return
	}
	m.backoff.Add(seconds)
}

// WriteTextfile writes all counters to path in the Prometheus text format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
