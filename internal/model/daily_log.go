package model

import (
	"time"

	"gorm.io/datatypes"
)

// DailyLog is the relational backend's row shape: one row per user per
// calendar date, upsert semantics on the (user_id, log_date) pair. Habit
// values live in a jsonb column so adding a field is a mapping change, not
// a migration.
type DailyLog struct {
	BaseModel
	UserID  int64          `gorm:"not null;uniqueIndex:idx_daily_logs_user_date" json:"user_id"`
	LogDate time.Time      `gorm:"type:date;not null;uniqueIndex:idx_daily_logs_user_date" json:"log_date"`
	Fields  datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"fields"`
}

func (DailyLog) TableName() string {
	return "daily_logs"
}
