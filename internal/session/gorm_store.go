package session

import (
	"context"
	"errors"
	"time"

	"github.com/service-panel/servicepanel/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps sessions in the relational store alongside panel data.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create persists a new session row.
func (s *GormStore) Create(ctx context.Context, sess *models.Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

// Get returns a live session by ID.
func (s *GormStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if errFind := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errFind
	}
	if !sess.ExpiresAt.After(time.Now().UTC()) {
		// Expired rows are lazily reaped on read.
		_ = s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete removes a session row. Missing rows are ignored.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}
