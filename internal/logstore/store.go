package logstore

import (
	"context"
	"fmt"

	"habitlog/config"
	"habitlog/internal/model"
	"habitlog/storage/database"
)

// LogStore is the single backend-agnostic surface the rest of the service
// talks to. Which backend sits behind it is decided once, here, from
// configuration; nothing outside this package branches on it.
type LogStore interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// FetchAll retrieves every stored record for the user, normalized and
	// sorted ascending by date. Malformed rows are skipped with a logged
	// warning, they never abort the fetch.
	FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error)

	// Upsert writes one record keyed by date, overwriting any existing
	// record for that date. Upserts are independent requests: no queueing,
	// no batching, no automatic retry.
	Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error
}

// New builds the configured backend wrapped with the read retry policy.
func New(mapping *model.FieldMapping) (LogStore, error) {
	var inner LogStore

	switch config.Cfg.LogStoreBackend {
	case config.BackendPostgres:
		inner = NewPostgres(database.DB(), mapping)
	case config.BackendSheet:
		sheet, err := NewSheet(mapping)
		if err != nil {
			return nil, fmt.Errorf("failed to build sheet backend: %w", err)
		}
		inner = sheet
	default:
		return nil, fmt.Errorf("unknown log store backend %q", config.Cfg.LogStoreBackend)
	}

	return newRetrying(inner), nil
}
