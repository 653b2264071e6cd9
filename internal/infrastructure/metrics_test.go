package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "prometheus"}, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateReportMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordReport(ctx, "csv", 42, 150*time.Millisecond)
	metrics.RecordLoadFailure(ctx, "xlsx", assert.AnError)
	metrics.RecordHTTPRequest(ctx, http.MethodPost, "/api/v1/reports", http.StatusOK, 10*time.Millisecond)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "reports_generated_total")
	assert.Contains(t, string(body), "report_load_failures_total")
	assert.Contains(t, string(body), "report_duration_seconds")
	assert.Contains(t, string(body), "http_requests_total")
}

func TestReportMetrics_NilSafe(t *testing.T) {
	var metrics *ReportMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordReport(ctx, "csv", 1, time.Second)
		metrics.RecordLoadFailure(ctx, "csv", assert.AnError)
		metrics.RecordHTTPRequest(ctx, http.MethodGet, "/", http.StatusOK, time.Second)
	})
}
