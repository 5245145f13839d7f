package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
)

func TestNewMetricProviderFromConfig_Disabled(t *testing.T) {
	p, err := NewMetricProviderFromConfig(config.TelemetryConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPrometheusHandler(t *testing.T) {
	p, err := NewMetricProviderFromConfig(config.TelemetryConfig{Enabled: true, ServiceName: "sliswap-test"})
	require.NoError(t, err)
	require.NotNil(t, p.Registry)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	counter, err := otel.Meter("test").Int64Counter("swap_calculations_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "swap_calculations_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestManualReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	p, err := NewMetricProvider(WithServiceName("test"), WithProviderConfig(NewManualReaderConfig(reader)))
	require.NoError(t, err)
	assert.Nil(t, p.Registry)

	h, err := p.Meter("test").Float64Histogram("swap_calculation_latency_ms")
	require.NoError(t, err)
	h.Record(context.Background(), 1.5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "swap_calculation_latency_ms", rm.ScopeMetrics[0].Metrics[0].Name)
}
