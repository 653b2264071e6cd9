package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReportMetrics are the instruments of the report pipeline and the HTTP
// layer. A nil *ReportMetrics records nothing.
type ReportMetrics struct {
	ReportsGenerated    metric.Int64Counter
	LoadFailures        metric.Int64Counter
	RowsLoaded          metric.Int64Histogram
	ReportDuration      metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// CreateReportMetrics registers the instruments on meter
func CreateReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	m := &ReportMetrics{}
	var err error

	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc))
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		h, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		return h
	}

	m.ReportsGenerated = counter("reports_generated_total", "Contract reports built from an upload")
	m.LoadFailures = counter("report_load_failures_total", "Uploads that could not be loaded")
	m.ReportDuration = seconds("report_duration_seconds", "Time to load an upload and build its report")
	m.HTTPRequestsTotal = counter("http_requests_total", "HTTP requests served")
	m.HTTPRequestDuration = seconds("http_request_duration_seconds", "HTTP request duration")
	if err == nil {
		m.RowsLoaded, err = meter.Int64Histogram("report_rows_loaded",
			metric.WithDescription("Data rows per loaded upload"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}
	return m, nil
}

// RecordReport counts one report built from an upload of the given format
func (m *ReportMetrics) RecordReport(ctx context.Context, format string, rows int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("format", format))
	m.ReportsGenerated.Add(ctx, 1, attrs)
	m.RowsLoaded.Record(ctx, int64(rows), attrs)
	m.ReportDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordLoadFailure counts an upload that could not be loaded
func (m *ReportMetrics) RecordLoadFailure(ctx context.Context, format string, err error) {
	if m == nil {
		return
	}
	m.LoadFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("error.type", fmt.Sprintf("%T", err)),
	))
}

// RecordHTTPRequest counts a served request under its route pattern
func (m *ReportMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
