// Package metrics exposes validation outcomes of long-running CLI commands
// in the Prometheus format.
//
// Metrics:
//   - goshape_validations_total: validations by schema and result (valid, invalid, error)
//   - goshape_validation_duration_seconds: decode plus validation time by schema
//   - goshape_validation_failures_total: failed validations by schema and root issue code
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/source"
)

const namespace = "goshape"

// Result labels.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Collector records validation metrics into its own registry.
type Collector struct {
	registry *prometheus.Registry

	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of document validations",
			},
			[]string{"schema", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of decoding and validating a document in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
			[]string{"schema"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Failed validations by the code of the innermost issue",
			},
			[]string{"schema", "code"},
		),
	}
	registry.MustRegister(c.total, c.duration, c.failures)
	return c
}

// Observe records one validation of schema that took d and ended with err.
func (c *Collector) Observe(schema string, d time.Duration, err error) {
	c.duration.WithLabelValues(schema).Observe(d.Seconds())
	result, code := classify(err)
	c.total.WithLabelValues(schema, result).Inc()
	if code != "" {
		c.failures.WithLabelValues(schema, code).Inc()
	}
}

func classify(err error) (result, code string) {
	if err == nil {
		return ResultValid, ""
	}
	if ve, ok := goshape.AsValidationError(err); ok {
		return ResultInvalid, ve.Root().Code
	}
	var se *source.Error
	if errors.As(err, &se) {
		return ResultInvalid, se.Code
	}
	return ResultError, ""
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
