package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResourceUsageLog records a single resource usage event reported by an
// instance. Rows are append-only; the only delete path is the cascade that
// runs when the owning instance is removed.
type ResourceUsageLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	InstanceID string  `gorm:"type:text;not null;index"` // Related instance ID.
	UserID     *uint64 `gorm:"index"`                    // Attributed user ID, when known.

	Action string         `gorm:"type:text"`  // Short action label.
	Detail datatypes.JSON `gorm:"type:jsonb"` // Structured event detail.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Event timestamp.
}
