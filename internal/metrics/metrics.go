// Package metrics holds the Prometheus instrumentation for a livescribe process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// States exported on the pipeline_state gauge, one series each.
var States = []string{"idle", "loading", "running", "stopping", "stopped"}

// Metrics contains every collector, registered on a private registry.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// Queue
	ChunksPushed  prometheus.Counter
	ChunksDropped prometheus.Counter
	QueueDepth    prometheus.Gauge
	Drains        prometheus.Counter

	// Recognition
	Recognitions       *prometheus.CounterVec
	RecognitionLatency prometheus.Histogram

	// Translation
	Translations *prometheus.CounterVec

	// Transcript
	Previews  prometheus.Counter
	Finalized prometheus.Counter

	// Lifecycle
	PipelineState *prometheus.GaugeVec
	Sessions      *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		ChunksPushed: factory.NewCounter(prometheus.CounterOpts{
			Name: "livescribe_audio_chunks_pushed_total",
			Help: "Speech chunks pushed onto the audio queue",
		}),
		ChunksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "livescribe_audio_chunks_dropped_total",
			Help: "Chunks evicted by the queue bound",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livescribe_audio_queue_depth",
			Help: "Chunks waiting in the audio queue",
		}),
		Drains: factory.NewCounter(prometheus.CounterOpts{
			Name: "livescribe_queue_drains_total",
			Help: "Poll ticks that drained at least one chunk",
		}),
		Recognitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livescribe_recognitions_total",
			Help: "Recognition calls by result",
		}, []string{"result"}),
		RecognitionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livescribe_recognition_duration_seconds",
			Help:    "Wall-clock time of one recognition call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		Translations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livescribe_translations_total",
			Help: "Translation attempts by result",
		}, []string{"result"}),
		Previews: factory.NewCounter(prometheus.CounterOpts{
			Name: "livescribe_utterance_previews_total",
			Help: "Open-utterance preview updates",
		}),
		Finalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "livescribe_utterances_finalized_total",
			Help: "Utterances committed as final",
		}),
		PipelineState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livescribe_pipeline_state",
			Help: "1 for the current pipeline state, 0 otherwise",
		}, []string{"state"}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livescribe_sessions_total",
			Help: "Completed sessions by outcome",
		}, []string{"outcome"}),
	}
	m.SetState("idle")
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ChunkPushed(evicted bool, depth int) {
	if m == nil {
		return
	}
	m.ChunksPushed.Inc()
	if evicted {
		m.ChunksDropped.Inc()
	}
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) Drained(depth int) {
	if m == nil {
		return
	}
	m.Drains.Inc()
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) Recognition(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Recognitions.WithLabelValues(result).Inc()
	m.RecognitionLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) Translation(degraded bool) {
	if m == nil {
		return
	}
	result := "ok"
	if degraded {
		result = "degraded"
	}
	m.Translations.WithLabelValues(result).Inc()
}

func (m *Metrics) Preview() {
	if m == nil {
		return
	}
	m.Previews.Inc()
}

func (m *Metrics) Finalize() {
	if m == nil {
		return
	}
	m.Finalized.Inc()
}

// SetState marks state as current and clears the others.
func (m *Metrics) SetState(state string) {
	if m == nil {
		return
	}
	for _, s := range States {
		value := 0.0
		if s == state {
			value = 1
		}
		m.PipelineState.WithLabelValues(s).Set(value)
	}
}

func (m *Metrics) SessionEnded(outcome string) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(outcome).Inc()
}
