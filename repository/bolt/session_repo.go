package bolt

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/repository"
)

var sessionsBucket = []byte("sessions")

type sessionRepository struct {
	db  *bolt.DB
	ttl time.Duration
}

// NewSessionRepository creates an embedded session repository on top of
// the given bolt database and ensures the sessions bucket exists.
// Unlike Redis there is no native TTL, so expired records are dropped
// lazily on Get and in bulk by PurgeExpired.
func NewSessionRepository(db *bolt.DB, ttl time.Duration) (repository.SessionRepository, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	}); err != nil {
		return nil, err
	}
	return &sessionRepository{db: db, ttl: ttl}, nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session *domain.Session
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(sessionsBucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		var s domain.Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		session = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(time.Now()) {
		if err := r.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(session.ID), payload)
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
}

// PurgeExpired removes every session that expired at or before the
// given instant and reports how many were dropped. Records that no
// longer unmarshal are dropped as well.
func (r *sessionRepository) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	var purged int
	err := r.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(sessionsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
				continue
			}
			if !session.ExpiresAt.After(before) {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
