// Package metricsvc exposes the business and HTTP metrics to Prometheus.
package metricsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/elimu/core"
)

const namespace = "elimu"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	EnrollmentsTotal    prometheus.Counter
	LessonCompletions   *prometheus.CounterVec
	ReviewMutations     *prometheus.CounterVec
	AggregateRecomputes *prometheus.CounterVec
	RecomputeRetries    *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	gatherer            prometheus.Gatherer
}

var _ core.Metrics = (*Metrics)(nil)

// New registers the collectors on reg. Use a fresh prometheus.NewRegistry() per test.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EnrollmentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Total number of enrollments created",
		}),
		LessonCompletions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lesson_completions_total",
			Help:      "Total number of lessons completed, by resulting enrollment status",
		}, []string{"status"}),
		ReviewMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_mutations_total",
			Help:      "Total number of review mutations, by operation",
		}, []string{"op"}),
		AggregateRecomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_recomputes_total",
			Help:      "Total number of course rating recomputes, by result",
		}, []string{"result"}),
		RecomputeRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_recompute_retries_total",
			Help:      "Total number of queued course rating recomputes, by result",
		}, []string{"result"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) EnrollmentCreated()            { m.EnrollmentsTotal.Inc() }
func (m *Metrics) LessonCompleted(status string) { m.LessonCompletions.WithLabelValues(status).Inc() }
func (m *Metrics) ReviewMutated(op string)       { m.ReviewMutations.WithLabelValues(op).Inc() }
func (m *Metrics) AggregateRecomputed(ok bool)   { m.AggregateRecomputes.WithLabelValues(result(ok)).Inc() }
func (m *Metrics) RecomputeRetried(ok bool)      { m.RecomputeRetries.WithLabelValues(result(ok)).Inc() }

// Handler serves the registered collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records the count & latency of the requests, labelled by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			code := ctx.Response().Status
			if err != nil {
				if herr, ok := err.(*echo.HTTPError); ok {
					code = herr.Code
				} else if !ctx.Response().Committed {
					code = http.StatusInternalServerError
				}
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
