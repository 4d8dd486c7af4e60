package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_events(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.EnrollmentCreated()
	m.EnrollmentCreated()
	m.LessonCompleted("in-progress")
	m.LessonCompleted("completed")
	m.ReviewMutated("create")
	m.AggregateRecomputed(true)
	m.AggregateRecomputed(false)
	m.RecomputeRetried(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EnrollmentsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LessonCompletions.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewMutations.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AggregateRecomputes.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecomputeRetries.WithLabelValues("success")))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())

	app := echo.New()
	app.Use(m.Middleware())
	app.GET("/v1/courses/:id", func(ctx echo.Context) error { return ctx.NoContent(http.StatusOK) })
	app.GET("/boom", func(ctx echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })
	app.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/v1/courses/1", "/v1/courses/2", "/boom"} {
		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/courses/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "418")))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "elimu_http_request_duration_seconds"))
}
