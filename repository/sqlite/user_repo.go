package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	sqlitelib "zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tasktracker/backend/domain"
	infra "github.com/tasktracker/backend/internal/infrastructure/sqlite"
	"github.com/tasktracker/backend/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);
`

type userRepository struct {
	pool *infra.Pool
}

// NewUserRepository returns an embedded credential store backed by the
// given pool, ensuring the users table exists.
func NewUserRepository(ctx context.Context, pool *infra.Pool) (repository.UserRepository, error) {
	conn, err := pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return nil, fmt.Errorf("sqlite: ensuring users schema: %w", err)
	}
	return &userRepository{pool: pool}, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`
	return r.getBy(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`
	return r.getBy(ctx, query, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`
	return r.getBy(ctx, query, email)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	const query = `INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (r *userRepository) getBy(ctx context.Context, query, arg string) (*domain.User, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var user *domain.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{arg},
		ResultFunc: func(stmt *sqlitelib.Stmt) error {
			createdAt, parseErr := time.Parse(time.RFC3339Nano, stmt.ColumnText(4))
			if parseErr != nil {
				return parseErr
			}
			user = &domain.User{
				ID:           stmt.ColumnText(0),
				Username:     stmt.ColumnText(1),
				Email:        stmt.ColumnText(2),
				PasswordHash: stmt.ColumnText(3),
				CreatedAt:    createdAt,
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// mapConstraintError converts UNIQUE violations into the matching
// domain conflict. SQLite reports the failing column in the error text
// ("UNIQUE constraint failed: users.username").
func mapConstraintError(err error) error {
	if sqlitelib.ErrCode(err) != sqlitelib.ResultConstraintUnique {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return domain.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return domain.ErrEmailTaken
	default:
		return domain.WrapError(domain.ErrCodeConflict, "unique constraint violation", err)
	}
}
