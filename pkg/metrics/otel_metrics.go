package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics collects the domain counters for the log store and query cache.
type OTelMetrics struct {
	FetchTotal       metric.Int64Counter
	FetchDuration    metric.Float64Histogram
	FetchRowsDropped metric.Int64Counter
	UpsertTotal      metric.Int64Counter

	CacheHitTotal   metric.Int64Counter
	CacheMissTotal  metric.Int64Counter
	CacheStaleTotal metric.Int64Counter
	CacheEvictTotal metric.Int64Counter
}

var (
	metrics *OTelMetrics
	meter   = otel.Meter("habitlog")
)

func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.FetchTotal, err = meter.Int64Counter(
		"logstore_fetch_total",
		metric.WithDescription("Total number of full-dataset fetches against the log store"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	m.FetchDuration, err = meter.Float64Histogram(
		"logstore_fetch_duration_seconds",
		metric.WithDescription("Time spent fetching the full dataset in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.FetchRowsDropped, err = meter.Int64Counter(
		"logstore_rows_dropped_total",
		metric.WithDescription("Rows skipped during normalization because they were malformed"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	m.UpsertTotal, err = meter.Int64Counter(
		"logstore_upsert_total",
		metric.WithDescription("Total number of daily record upserts"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	m.CacheHitTotal, err = meter.Int64Counter(
		"querycache_hit_total",
		metric.WithDescription("Query cache reads served from a fresh entry"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return err
	}

	m.CacheMissTotal, err = meter.Int64Counter(
		"querycache_miss_total",
		metric.WithDescription("Query cache reads that triggered a synchronous fetch"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return err
	}

	m.CacheStaleTotal, err = meter.Int64Counter(
		"querycache_stale_total",
		metric.WithDescription("Query cache reads served stale while revalidating"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return err
	}

	m.CacheEvictTotal, err = meter.Int64Counter(
		"querycache_evict_total",
		metric.WithDescription("Query cache entries dropped by the idle janitor"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics returns the global instance, nil before InitMetrics. All record
// methods are nil-safe so callers never have to check.
func GetMetrics() *OTelMetrics {
	return metrics
}

func (m *OTelMetrics) RecordFetch(ctx context.Context, backend string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	)
	m.FetchTotal.Add(ctx, 1, attrs)
	m.FetchDuration.Record(ctx, seconds, attrs)
}

func (m *OTelMetrics) RecordRowsDropped(ctx context.Context, backend string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.FetchRowsDropped.Add(ctx, n, metric.WithAttributes(attribute.String("backend", backend)))
}

func (m *OTelMetrics) RecordUpsert(ctx context.Context, backend string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.UpsertTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

func (m *OTelMetrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheHitTotal.Add(ctx, 1)
}

func (m *OTelMetrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheMissTotal.Add(ctx, 1)
}

func (m *OTelMetrics) RecordCacheStale(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheStaleTotal.Add(ctx, 1)
}

func (m *OTelMetrics) RecordCacheEvict(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.CacheEvictTotal.Add(ctx, n)
}
