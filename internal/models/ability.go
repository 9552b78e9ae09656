package models

import "time"

// UserInstanceAbility records whether a user may use a service instance.
// At most one row exists per (user, instance) pair; the token is the bearer
// credential the instance presents when verifying a calling user.
type UserInstanceAbility struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID     uint64 `gorm:"not null;uniqueIndex:idx_user_instance"`           // Related user ID.
	InstanceID string `gorm:"type:text;not null;uniqueIndex:idx_user_instance"` // Related instance ID.

	User     *User            `gorm:"foreignKey:UserID"`     // Associated user record.
	Instance *ServiceInstance `gorm:"foreignKey:InstanceID"` // Associated instance record.

	Token  string `gorm:"type:text;not null;uniqueIndex"` // Opaque per-pair access token.
	CanUse bool   `gorm:"not null;default:false"`         // Whether the grant is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
