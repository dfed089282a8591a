package repository

import (
	"context"
	"time"

	"github.com/tasktracker/backend/domain"
)

// SessionRepository stores server-side sessions. Backends with native
// TTL support (redis) may implement PurgeExpired as a no-op; the bolt
// backend relies on it for cleanup.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, before time.Time) (int, error)
}
