package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for lines_emitted_total.
const (
	KindLine    = "line"    // complete sanitized line
	KindPartial = "partial" // forced partial after idle timeout
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	linesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentstream",
			Subsystem: "segment",
			Name:      "lines_emitted_total",
			Help:      "Lines handed to the classifier, by kind (line or partial).",
		}, []string{"kind"},
	)
	activeBuffers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "agentstream",
			Subsystem: "segment",
			Name:      "active_buffers",
			Help:      "Sessions currently holding buffered unterminated text.",
		},
	)
	eventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentstream",
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Lifecycle events published to the dispatcher, by type.",
		}, []string{"type"},
	)
	exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentstream",
			Subsystem: "classify",
			Name:      "exits_total",
			Help:      "Process exits translated to RUN_FINISHED, by status.",
		}, []string{"status"},
	)
	subscriberPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agentstream",
			Subsystem: "dispatch",
			Name:      "subscriber_panics_total",
			Help:      "Panics recovered while delivering events to subscribers.",
		},
	)
)

// Register registers all metrics with the provided registerer (nil means the
// default registerer). Safe to call multiple times; subsequent calls after
// success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{linesEmitted, activeBuffers, eventsEmitted, exits, subscriberPanics}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// Already registered is fine (allows double Register with default registry).
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving the DefaultGatherer. This package
// never starts a server; the host mounts the route itself.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncLine(kind string) {
	if regOK.Load() {
		linesEmitted.WithLabelValues(kind).Inc()
	}
}

func IncEvent(eventType string) {
	if regOK.Load() {
		eventsEmitted.WithLabelValues(eventType).Inc()
	}
}

func IncExit(status string) {
	if regOK.Load() {
		exits.WithLabelValues(status).Inc()
	}
}

func IncActiveBuffers() {
	if regOK.Load() {
		activeBuffers.Inc()
	}
}

func DecActiveBuffers() {
	if regOK.Load() {
		activeBuffers.Dec()
	}
}

func IncSubscriberPanic() {
	if regOK.Load() {
		subscriberPanics.Inc()
	}
}
