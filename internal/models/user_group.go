package models

import "time"

// UserGroup is an administrative label attached to panel accounts. Groups
// carry no permissions of their own; they only organize the user list.
type UserGroup struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null;uniqueIndex"` // Unique group name.
	Description string `gorm:"type:text"`                      // Optional free-form note.
	IsDefault   bool   `gorm:"not null;default:false"`         // Assigned to new accounts when set.

	Users []User `gorm:"foreignKey:UserGroupID"` // Accounts in this group.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
