package service

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"habitlog/internal/cache"
	"habitlog/internal/logstore"
	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
)

// LogService owns reads and writes of daily records. Reads go through the
// query cache; every successful write invalidates the caller's cached set
// before returning, so a follow-up read always sees the new record.
type LogService struct {
	store   logstore.LogStore
	cache   *cache.QueryCache
	mapping *model.FieldMapping
}

func cacheKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// ListRecords returns the user's normalized records, newest first,
// optionally restricted to a date range.
//
// No session is a soft-fail: the UI treats "not signed in" as "no data
// yet", so this returns an empty set rather than an error.
func (s *LogService) ListRecords(ctx context.Context, userID int64, from, to string, fresh bool) ([]model.DailyRecord, error) {
	if userID == 0 {
		logger.Logger.Debug("Listing records without a session, serving empty set")
		return []model.DailyRecord{}, nil
	}

	rng, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx, userID, fresh)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.DailyRecord, 0, len(records))
	for _, rec := range records {
		if rng.Contains(rec.Date) {
			filtered = append(filtered, rec)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Date > filtered[j].Date
	})

	return filtered, nil
}

// Records returns the raw ascending record set for aggregation.
func (s *LogService) Records(ctx context.Context, userID int64, fresh bool) ([]model.DailyRecord, error) {
	if userID == 0 {
		return []model.DailyRecord{}, nil
	}
	return s.fetch(ctx, userID, fresh)
}

func (s *LogService) fetch(ctx context.Context, userID int64, fresh bool) ([]model.DailyRecord, error) {
	key := cacheKey(userID)
	if fresh {
		return s.cache.GetFresh(ctx, key)
	}
	return s.cache.Get(ctx, key)
}

// UpsertRecord validates and writes one day's record, then invalidates the
// cached record set. Writes require a session, unlike reads.
func (s *LogService) UpsertRecord(ctx context.Context, userID int64, date string, rawFields map[string]interface{}) (model.DailyRecord, error) {
	if userID == 0 {
		return model.DailyRecord{}, pkgerrors.AuthenticationRequired
	}

	rec, err := logstore.BuildRecord(s.mapping, date, rawFields)
	if err != nil {
		return model.DailyRecord{}, err
	}

	if err := s.store.Upsert(ctx, userID, rec); err != nil {
		logger.Logger.Error("Failed to upsert daily record",
			zap.Int64("user_id", userID),
			zap.String("date", rec.Date),
			zap.Error(err),
		)
		return model.DailyRecord{}, err
	}

	// Synchronous with the write completing: the next read refetches.
	s.cache.Invalidate(cacheKey(userID))

	logger.Logger.Info("Daily record upserted",
		zap.Int64("user_id", userID),
		zap.String("date", rec.Date),
		zap.Int("fields", len(rec.Fields)),
	)

	return rec, nil
}
