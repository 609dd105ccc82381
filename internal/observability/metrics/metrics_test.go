package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("kind", "RegionDenied"),
		attribute.String("id_number", "110101199001011234"),
		attribute.String("premium_type", "fixed"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("kind"), attrs[0].Key)
	assert.Equal(t, attribute.Key("premium_type"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordQuote(context.Background(), "fixed", 100)
	m.RecordInterception(context.Background(), "AgeOutOfRange")
	m.RecordApplicationCreated(context.Background(), "portal")
	m.RecordRateMissing(context.Background())
	m.RecordRateLimitDenied(context.Background(), "quote", "limited")
	m.RecordJobRun(context.Background(), "expire_applications", "ok", 3)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordQuote(context.Background(), "calculated", 40)
	m.RecordJobRun(context.Background(), "expire_applications", "error", 0)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := newHTTPMetrics(registry, Config{ServiceName: "polisa", Environment: "test"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/products/:id", "404"))
	assert.Equal(t, float64(1), got)
}
