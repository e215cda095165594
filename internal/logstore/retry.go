package logstore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"habitlog/config"
	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
)

// retryingStore retries reads a bounded number of times with exponential
// backoff. Writes pass straight through: the backends give no idempotency
// guarantee, so a blind write retry could duplicate side effects.
type retryingStore struct {
	inner    LogStore
	maxTries uint
	baseWait time.Duration
}

func newRetrying(inner LogStore) LogStore {
	return &retryingStore{
		inner:    inner,
		maxTries: uint(config.Cfg.FetchMaxTries),
		baseWait: time.Duration(config.Cfg.FetchBackoffBaseMS) * time.Millisecond,
	}
}

func (s *retryingStore) Name() string {
	return s.inner.Name()
}

func (s *retryingStore) FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error) {
	attempt := 0
	operation := func() ([]model.DailyRecord, error) {
		attempt++
		records, err := s.inner.FetchAll(ctx, userID)
		if err != nil {
			if !stderrors.Is(err, pkgerrors.UpstreamUnavailable) {
				return nil, backoff.Permanent(err)
			}
			logger.Logger.Warn("Log store fetch failed, will retry",
				zap.String("backend", s.inner.Name()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, err
		}
		return records, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.baseWait

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(s.maxTries),
	)
}

func (s *retryingStore) Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error {
	return s.inner.Upsert(ctx, userID, rec)
}
