package logstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
)

// flakyStore fails FetchAll a set number of times before succeeding.
type flakyStore struct {
	failures   int
	failWith   error
	fetchCalls int
	upserts    int
}

func (f *flakyStore) Name() string { return "flaky" }

func (f *flakyStore) FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error) {
	f.fetchCalls++
	if f.fetchCalls <= f.failures {
		return nil, f.failWith
	}
	return []model.DailyRecord{{Date: "2024-02-07", Fields: map[string]model.FieldValue{}}}, nil
}

func (f *flakyStore) Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error {
	f.upserts++
	return f.failWith
}

func newTestRetrying(inner LogStore, maxTries uint) LogStore {
	return &retryingStore{inner: inner, maxTries: maxTries, baseWait: time.Millisecond}
}

func TestFetchAll_RetriesTransientFailures(t *testing.T) {
	inner := &flakyStore{
		failures: 2,
		failWith: fmt.Errorf("%w: connection refused", pkgerrors.UpstreamUnavailable),
	}
	store := newTestRetrying(inner, 3)

	records, err := store.FetchAll(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected the third attempt to succeed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if inner.fetchCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.fetchCalls)
	}
}

func TestFetchAll_GivesUpAfterMaxTries(t *testing.T) {
	inner := &flakyStore{
		failures: 10,
		failWith: fmt.Errorf("%w: connection refused", pkgerrors.UpstreamUnavailable),
	}
	store := newTestRetrying(inner, 3)

	_, err := store.FetchAll(context.Background(), 7)
	if !errors.Is(err, pkgerrors.UpstreamUnavailable) {
		t.Errorf("expected UpstreamUnavailable, got %v", err)
	}
	if inner.fetchCalls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", inner.fetchCalls)
	}
}

func TestFetchAll_NonTransientErrorNotRetried(t *testing.T) {
	inner := &flakyStore{
		failures: 10,
		failWith: pkgerrors.ValidationFailure,
	}
	store := newTestRetrying(inner, 3)

	_, err := store.FetchAll(context.Background(), 7)
	if !errors.Is(err, pkgerrors.ValidationFailure) {
		t.Errorf("expected ValidationFailure, got %v", err)
	}
	if inner.fetchCalls != 1 {
		t.Errorf("non-transient errors must not retry, got %d attempts", inner.fetchCalls)
	}
}

func TestUpsert_NeverRetried(t *testing.T) {
	inner := &flakyStore{
		failures: 10,
		failWith: fmt.Errorf("%w: connection refused", pkgerrors.UpstreamUnavailable),
	}
	store := newTestRetrying(inner, 3)

	err := store.Upsert(context.Background(), 7, model.DailyRecord{Date: "2024-02-07"})
	if !errors.Is(err, pkgerrors.UpstreamUnavailable) {
		t.Errorf("expected the write error to surface, got %v", err)
	}
	if inner.upserts != 1 {
		t.Errorf("writes must pass through exactly once, got %d", inner.upserts)
	}
}
