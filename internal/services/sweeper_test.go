package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	boltinfra "github.com/tasktracker/backend/internal/infrastructure/bolt"
	"github.com/tasktracker/backend/repository"
	boltrepo "github.com/tasktracker/backend/repository/bolt"
)

func newTestSessions(t *testing.T) repository.SessionRepository {
	t.Helper()

	db, err := boltinfra.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open bolt database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := boltrepo.NewSessionRepository(db, time.Hour)
	if err != nil {
		t.Fatalf("create session repository: %v", err)
	}
	return sessions
}

func TestSweepRemovesOnlyExpiredSessions(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	now := time.Now()

	live := &domain.Session{ID: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &domain.Session{ID: "stale", UserID: "u2", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*domain.Session{live, stale} {
		if err := sessions.Save(ctx, s); err != nil {
			t.Fatalf("save session %s: %v", s.ID, err)
		}
	}

	sw := NewSessionSweeper(sessions, zap.NewNop(), SweeperConfig{Interval: time.Minute})
	if err := sw.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if _, err := sessions.Get(ctx, "live"); err != nil {
		t.Errorf("live session was swept: %v", err)
	}
	if _, err := sessions.Get(ctx, "stale"); err == nil {
		t.Error("stale session survived the sweep")
	}
}

func TestSweepOnEmptyStore(t *testing.T) {
	sessions := newTestSessions(t)

	sw := NewSessionSweeper(sessions, zap.NewNop(), SweeperConfig{})
	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
}
