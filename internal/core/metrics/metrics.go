// Package metrics exposes BranchKeeper evaluation and request metrics to Prometheus.
//
// Metrics:
//   - branchkeeper_evaluations_total{verdict}: evaluations by verdict
//   - branchkeeper_evaluation_duration_seconds: evaluation latency
//   - branchkeeper_rules_evaluated_total: rules evaluated across all evaluations
//   - branchkeeper_config_errors_total: configurations rejected by Compile
//   - branchkeeper_grpc_requests_total{method,code}: gRPC requests by outcome
//   - branchkeeper_grpc_request_duration_seconds{method}: gRPC handler latency
package metrics

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "branchkeeper"

// Collector owns the metric registry. It implements conditions.Observer.
type Collector struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	rulesEvaluated     prometheus.Counter
	configErrors       prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ conditions.Observer = (*Collector)(nil)

// NewCollector creates and registers all metrics on a fresh registry.
// Process and Go runtime collectors are included.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of condition evaluations by verdict",
			},
			[]string{"verdict"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of condition evaluation in seconds",
				// Evaluations are in-memory and should finish in microseconds
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		rulesEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_evaluated_total",
				Help:      "Total number of rules evaluated",
			},
		),

		configErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_errors_total",
				Help:      "Total number of condition configurations rejected",
			},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "requests_total",
				Help:      "Total number of gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "request_duration_seconds",
				Help:      "Duration of gRPC handlers in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	c.registry.MustRegister(
		c.evaluationsTotal,
		c.evaluationDuration,
		c.rulesEvaluated,
		c.configErrors,
		c.requestsTotal,
		c.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveEvaluation records one evaluation.
func (c *Collector) ObserveEvaluation(result conditions.Result, elapsed time.Duration) {
	c.evaluationsTotal.WithLabelValues(strconv.FormatBool(result.Verdict)).Inc()
	c.evaluationDuration.Observe(elapsed.Seconds())
	c.rulesEvaluated.Add(float64(result.RuleCount()))
}

// ObserveConfigError records a rejected configuration.
func (c *Collector) ObserveConfigError() {
	c.configErrors.Inc()
}

// UnaryInterceptor counts gRPC requests by method and status code.
func (c *Collector) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		method := path.Base(info.FullMethod)
		c.requestsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
		c.requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
