// Package metrics exports remote-call and fallback telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "interview_coach"

// Observer records outcomes of remote provider calls and fallback substitutions.
type Observer interface {
	RecordCall(service, operation string, duration time.Duration, err error)
	RecordFallback(operation string)
	RecordInterview(outcome string)
}

// PrometheusObserver implements Observer on top of Prometheus collectors.
type PrometheusObserver struct {
	callDuration *prometheus.HistogramVec
	callErrors   *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	interviews   *prometheus.CounterVec
}

// NewPrometheusObserver registers the collectors on reg (the default registerer when nil).
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of calls to the avatar and language-model providers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		callErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_call_errors_total",
			Help:      "Count of failed provider calls.",
		}, []string{"service", "operation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Count of built-in fallback values served instead of model output.",
		}, []string{"operation"}),
		interviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_total",
			Help:      "Interview sessions by terminal outcome.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{o.callDuration, o.callErrors, o.fallbacks, o.interviews}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	return o, nil
}

// RecordCall tracks latency and failures of a single provider request.
func (o *PrometheusObserver) RecordCall(service, operation string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.callDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
	if err != nil {
		o.callErrors.WithLabelValues(service, operation).Inc()
	}
}

func (o *PrometheusObserver) RecordFallback(operation string) {
	if o == nil {
		return
	}
	o.fallbacks.WithLabelValues(operation).Inc()
}

func (o *PrometheusObserver) RecordInterview(outcome string) {
	if o == nil {
		return
	}
	o.interviews.WithLabelValues(outcome).Inc()
}

type nopObserver struct{}

func (nopObserver) RecordCall(string, string, time.Duration, error) {}

func (nopObserver) RecordFallback(string) {}

func (nopObserver) RecordInterview(string) {}

// Nop returns an Observer that discards everything.
func Nop() Observer {
	return nopObserver{}
}

// OrNop returns o, or a no-op observer when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
