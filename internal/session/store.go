package session

import (
	"context"
	"errors"

	"github.com/service-panel/servicepanel/internal/models"
)

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session: not found")

// Store persists session state. Implementations must treat deletion of a
// missing session as success so that logout stays idempotent.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, sess *models.Session) error
	// Get returns a live session by ID, or ErrNotFound when the session is
	// missing or past its expiry.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
