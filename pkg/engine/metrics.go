package engine

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "uischema"

// Commit sources.
const (
	sourceCandidate = "candidate"
	sourceEvolution = "evolution"
	sourceBatch     = "batch"
	sourceDispatch  = "dispatch"
	sourceRewind    = "rewind"
	sourceAdvance   = "advance"
)

// Rejection reasons.
const (
	reasonValidation = "validation"
	reasonEvolution  = "evolution"
	reasonBusy       = "busy"
	reasonCancelled  = "cancelled"
	reasonNoDocument = "no_document"
	reasonInternal   = "internal"
)

type metrics struct {
	commits          *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	queueDepth       prometheus.Gauge
	currentVersion   prometheus.Gauge
	listenerFailures prometheus.Counter
}

// newMetrics builds the engine collectors and registers them with reg when
// it is non-nil. Collectors already registered by another engine are shared.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "commits_total",
			Help:      "Documents committed, by source.",
		}, []string{"source"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "rejections_total",
			Help:      "Submissions that did not commit, by source and reason.",
		}, []string{"source", "reason"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "queue_depth",
			Help:      "Submissions in flight or waiting.",
		}),
		currentVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "current_version",
			Help:      "Version of the current document.",
		}),
		listenerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "listener_failures_total",
			Help:      "Listener errors and panics.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.commits, err = register(reg, m.commits); err != nil {
		return nil, err
	}
	if m.rejections, err = register(reg, m.rejections); err != nil {
		return nil, err
	}
	if m.queueDepth, err = register(reg, m.queueDepth); err != nil {
		return nil, err
	}
	if m.currentVersion, err = register(reg, m.currentVersion); err != nil {
		return nil, err
	}
	if m.listenerFailures, err = register(reg, m.listenerFailures); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("engine: register metrics: %w", err)
	}
	return c, nil
}
