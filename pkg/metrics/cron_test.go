package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "revenue_snapshot"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)
	metrics.IncSkipped(job)
	metrics.IncSkipped(job)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "marketplace_cron_job_success_total", "job", job)
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "marketplace_cron_job_failure_total", "job", job)
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "marketplace_cron_job_skipped_total", "job", job)
	require.NoError(t, err)
	require.Equal(t, 2.0, got)

	sum, err := fetchHistogramSum(mfs, "marketplace_cron_job_duration_seconds", "job", job)
	require.NoError(t, err)
	require.Greater(t, sum, 0.0)
}

func TestNilRegistererIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		NewCronJobMetrics(nil).IncSuccess("x")
		NewHTTPMetrics(nil).Observe("GET", "/x", 200, time.Millisecond)
		NewOutboxMetrics(nil).IncPublished("order_created", "pubsub")
		var m *OutboxMetrics
		m.IncFailed("a", "b")
	})
}

func TestHTTPMetricsUsesRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/admin/orders/{id}", 200, 10*time.Millisecond)
	m.Observe("GET", "/api/admin/orders/{id}", 200, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "marketplace_http_requests_total", "route", "/api/admin/orders/{id}")
	require.NoError(t, err)
	require.Equal(t, 2.0, got)
	got, err = fetchCounterValue(mfs, "marketplace_http_requests_total", "route", "unknown")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.IncPublished("order_created", "rabbitmq")
	m.IncFailed("order_created", "rabbitmq")
	m.IncDeadLetter("order_created", "max_attempts")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "marketplace_outbox_published_total", "transport", "rabbitmq")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
	got, err = fetchCounterValue(mfs, "marketplace_outbox_dead_letter_total", "reason", "max_attempts")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
