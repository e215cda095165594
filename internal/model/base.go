package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the bookkeeping columns shared by persisted models.
// IDs are assigned by the snowflake generator, not by the database.
type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	ID        int64          `gorm:"primaryKey" json:"id"`
}
