package logstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
	"habitlog/pkg/metrics"
	"habitlog/pkg/snowflake"
)

// Postgres reads and writes daily logs in the relational backend. Rows keep
// their habit values in a jsonb column which is normalized through the same
// coercion tables as the spreadsheet backend.
type Postgres struct {
	db      *gorm.DB
	mapping *model.FieldMapping
}

func NewPostgres(db *gorm.DB, mapping *model.FieldMapping) *Postgres {
	return &Postgres{db: db, mapping: mapping}
}

func (p *Postgres) Name() string {
	return "postgres"
}

func (p *Postgres) FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error) {
	start := time.Now()

	var rows []model.DailyLog
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("log_date ASC").
		Find(&rows).Error

	metrics.GetMetrics().RecordFetch(ctx, p.Name(), time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%w: query daily_logs: %v", pkgerrors.UpstreamUnavailable, err)
	}

	records := make([]model.DailyRecord, 0, len(rows))
	var dropped int64
	for _, row := range rows {
		var raw map[string]interface{}
		if err := json.Unmarshal(row.Fields, &raw); err != nil {
			dropped++
			logger.Logger.Warn("Skipping daily log with malformed fields payload",
				zap.Int64("id", row.ID),
				zap.Error(err),
			)
			continue
		}

		fields, unknown := NormalizeFields(p.mapping, raw)
		warnUnknownColumns(p.Name(), unknown)

		records = append(records, model.DailyRecord{
			Date:   row.LogDate.Format(dateLayout),
			Fields: fields,
		})
	}

	metrics.GetMetrics().RecordRowsDropped(ctx, p.Name(), dropped)
	return records, nil
}

func (p *Postgres) Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error {
	logDate, err := time.Parse(dateLayout, rec.Date)
	if err != nil {
		return pkgerrors.InvalidDate
	}

	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	id, err := snowflake.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate row id: %w", err)
	}

	row := model.DailyLog{
		BaseModel: model.BaseModel{ID: id},
		UserID:    userID,
		LogDate:   logDate,
		Fields:    datatypes.JSON(payload),
	}

	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"fields":     datatypes.JSON(payload),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error

	metrics.GetMetrics().RecordUpsert(ctx, p.Name(), err)
	if err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) || stderrors.Is(err, gorm.ErrCheckConstraintViolated) {
			logger.Logger.Warn("Daily log rejected by database constraint",
				zap.Int64("user_id", userID),
				zap.String("date", rec.Date),
				zap.Error(err),
			)
			return pkgerrors.ValidationFailure
		}
		return fmt.Errorf("%w: upsert daily_log: %v", pkgerrors.UpstreamUnavailable, err)
	}

	return nil
}
