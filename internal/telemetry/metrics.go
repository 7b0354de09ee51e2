package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/stacklok/toolhive-badge-sync/sync"
)

// SyncMetrics holds the OpenTelemetry instruments for badge sync runs
type SyncMetrics struct {
	runDuration       metric.Float64Histogram
	pagesFetched      metric.Int64Counter
	artifactsRendered metric.Int64Counter
	artifactsSkipped  metric.Int64Counter
	watermark         metric.Int64Gauge
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"thv_badge_sync_run_duration_seconds",
		metric.WithDescription("Duration of badge sync runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	pagesFetched, err := meter.Int64Counter(
		"thv_badge_sync_pages_fetched_total",
		metric.WithDescription("Number of registry pages fetched"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, err
	}

	artifactsRendered, err := meter.Int64Counter(
		"thv_badge_sync_artifacts_rendered_total",
		metric.WithDescription("Number of artifacts rendered to badge and snapshot"),
		metric.WithUnit("{artifact}"),
	)
	if err != nil {
		return nil, err
	}

	artifactsSkipped, err := meter.Int64Counter(
		"thv_badge_sync_artifacts_skipped_total",
		metric.WithDescription("Number of records skipped for an invalid coordinate"),
		metric.WithUnit("{artifact}"),
	)
	if err != nil {
		return nil, err
	}

	watermark, err := meter.Int64Gauge(
		"thv_badge_sync_watermark_milliseconds",
		metric.WithDescription("Checkpoint timestamp after the run, in epoch milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		runDuration:       runDuration,
		pagesFetched:      pagesFetched,
		artifactsRendered: artifactsRendered,
		artifactsSkipped:  artifactsSkipped,
		watermark:         watermark,
	}, nil
}

// RecordRunDuration records how long a run took and why it stopped
func (m *SyncMetrics) RecordRunDuration(ctx context.Context, duration time.Duration, stopReason string, success bool) {
	if m == nil || m.runDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("stop_reason", stopReason),
		attribute.Bool("success", success),
	}

	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPageFetched counts one fetched registry page
func (m *SyncMetrics) RecordPageFetched(ctx context.Context) {
	if m == nil || m.pagesFetched == nil {
		return
	}
	m.pagesFetched.Add(ctx, 1)
}

// RecordArtifactRendered counts one rendered artifact
func (m *SyncMetrics) RecordArtifactRendered(ctx context.Context) {
	if m == nil || m.artifactsRendered == nil {
		return
	}
	m.artifactsRendered.Add(ctx, 1)
}

// RecordArtifactSkipped counts one record skipped for an invalid coordinate
func (m *SyncMetrics) RecordArtifactSkipped(ctx context.Context) {
	if m == nil || m.artifactsSkipped == nil {
		return
	}
	m.artifactsSkipped.Add(ctx, 1)
}

// RecordWatermark records the checkpoint timestamp in effect after a run
func (m *SyncMetrics) RecordWatermark(ctx context.Context, ts int64) {
	if m == nil || m.watermark == nil {
		return
	}
	m.watermark.Record(ctx, ts)
}
