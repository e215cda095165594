package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"habitlog/internal/cache"
	"habitlog/internal/model"
	"habitlog/internal/model/dto"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// fakeStore is an in-memory LogStore for exercising the service layer.
type fakeStore struct {
	mu      sync.Mutex
	records map[int64]map[string]model.DailyRecord
	fetches int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]map[string]model.DailyRecord)}
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++

	out := make([]model.DailyRecord, 0, len(f.records[userID]))
	for _, rec := range f.records[userID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeStore) Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[userID] == nil {
		f.records[userID] = make(map[string]model.DailyRecord)
	}
	f.records[userID][rec.Date] = rec
	return nil
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func newTestLogService(t *testing.T, store *fakeStore) (*LogService, *cache.QueryCache) {
	t.Helper()

	mapping, err := model.DefaultFieldMapping()
	if err != nil {
		t.Fatalf("default mapping should be valid: %v", err)
	}

	qc := cache.New(func(ctx context.Context, key string) ([]model.DailyRecord, error) {
		userID, err := strconv.ParseInt(strings.TrimPrefix(key, "user:"), 10, 64)
		if err != nil {
			return nil, err
		}
		return store.FetchAll(ctx, userID)
	}, cache.Options{})
	t.Cleanup(qc.Dispose)

	return &LogService{store: store, cache: qc, mapping: mapping}, qc
}

func TestListRecords_NoSessionServesEmptySet(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestLogService(t, store)

	records, err := svc.ListRecords(context.Background(), 0, "", "", false)
	if err != nil {
		t.Fatalf("anonymous read must not error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("anonymous read should serve an empty set, got %d records", len(records))
	}
	if store.fetchCount() != 0 {
		t.Errorf("anonymous read must not hit the backend, fetches=%d", store.fetchCount())
	}
}

func TestUpsertRecord_RequiresSession(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestLogService(t, store)

	_, err := svc.UpsertRecord(context.Background(), 0, "2024-02-07", map[string]interface{}{"coffee": true})
	if !errors.Is(err, pkgerrors.AuthenticationRequired) {
		t.Errorf("expected AuthenticationRequired, got %v", err)
	}
}

func TestUpsertRecord_WriteThenReadSeesNewRecord(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestLogService(t, store)
	ctx := context.Background()

	// Warm the cache with the empty set.
	if _, err := svc.ListRecords(ctx, 7, "", "", false); err != nil {
		t.Fatalf("initial read failed: %v", err)
	}

	if _, err := svc.UpsertRecord(ctx, 7, "2024-02-07", map[string]interface{}{"coffee": "yes"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	records, err := svc.ListRecords(ctx, 7, "", "", false)
	if err != nil {
		t.Fatalf("read after write failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("read after write must see the new record, got %d", len(records))
	}
	if got := records[0].Field("coffee"); got != model.BoolValue(true) {
		t.Errorf("expected coerced coffee=true, got %+v", got)
	}
}

func TestListRecords_NewestFirstWithRange(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestLogService(t, store)
	ctx := context.Background()

	for _, date := range []string{"2024-02-05", "2024-02-07", "2024-02-06", "2024-01-20"} {
		if _, err := svc.UpsertRecord(ctx, 7, date, map[string]interface{}{"mood": 5}); err != nil {
			t.Fatalf("upsert %s failed: %v", date, err)
		}
	}

	records, err := svc.ListRecords(ctx, 7, "2024-02-01", "2024-02-29", false)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := []string{"2024-02-07", "2024-02-06", "2024-02-05"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if rec.Date != want[i] {
			t.Errorf("record %d: expected %s, got %s", i, want[i], rec.Date)
		}
	}
}

func TestBuildSeries_Validation(t *testing.T) {
	store := newFakeStore()
	logs, _ := newTestLogService(t, store)
	svc := &SeriesService{logs: logs, mapping: logs.mapping}
	ctx := context.Background()

	if _, err := svc.BuildSeries(ctx, 7, "step_tracker", dto.SeriesQuery{}); !errors.Is(err, pkgerrors.UnknownHabit) {
		t.Errorf("expected UnknownHabit, got %v", err)
	}
	if _, err := svc.BuildSeries(ctx, 7, "notes", dto.SeriesQuery{}); !errors.Is(err, pkgerrors.HabitNotChartable) {
		t.Errorf("expected HabitNotChartable, got %v", err)
	}
	if _, err := svc.BuildSeries(ctx, 7, "coffee", dto.SeriesQuery{Granularity: "day"}); !errors.Is(err, pkgerrors.InvalidGranularity) {
		t.Errorf("expected InvalidGranularity, got %v", err)
	}
	if _, err := svc.BuildSeries(ctx, 7, "coffee", dto.SeriesQuery{From: "02/07/24"}); !errors.Is(err, pkgerrors.InvalidDate) {
		t.Errorf("expected InvalidDate, got %v", err)
	}
}

func TestBuildSeries_EndToEnd(t *testing.T) {
	store := newFakeStore()
	logs, _ := newTestLogService(t, store)
	svc := &SeriesService{logs: logs, mapping: logs.mapping}
	ctx := context.Background()

	seed := map[string]interface{}{"coffee": true}
	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-02-01"} {
		if _, err := logs.UpsertRecord(ctx, 7, date, seed); err != nil {
			t.Fatalf("upsert %s failed: %v", date, err)
		}
	}
	if _, err := logs.UpsertRecord(ctx, 7, "2024-01-03", map[string]interface{}{"coffee": false}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	resp, err := svc.BuildSeries(ctx, 7, "coffee", dto.SeriesQuery{})
	if err != nil {
		t.Fatalf("BuildSeries failed: %v", err)
	}

	if resp.Habit != "coffee" || resp.Kind != "bool" || resp.Granularity != "month" {
		t.Errorf("unexpected series header: %+v", resp)
	}
	if len(resp.Points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(resp.Points))
	}

	jan := resp.Points[0]
	if jan.Bucket != "2024-01" || jan.Value != 2 || jan.SampleSize != 3 {
		t.Errorf("january bucket: %+v", jan)
	}
	if jan.Percentage == nil || *jan.Percentage != 67 {
		t.Errorf("january percentage: %v", jan.Percentage)
	}
}

func TestBuildSeries_NoSessionYieldsEmptySeries(t *testing.T) {
	store := newFakeStore()
	logs, _ := newTestLogService(t, store)
	svc := &SeriesService{logs: logs, mapping: logs.mapping}

	resp, err := svc.BuildSeries(context.Background(), 0, "coffee", dto.SeriesQuery{})
	if err != nil {
		t.Fatalf("anonymous series must not error: %v", err)
	}
	if len(resp.Points) != 0 {
		t.Errorf("anonymous series should be empty, got %d points", len(resp.Points))
	}
}
