package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tasktracker/backend/domain"
)

const uniqueViolationCode = "23505"

// mapConstraintError converts unique-constraint violations into the
// matching domain conflict, so two racing registrations fail cleanly at
// commit time instead of both landing.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return domain.ErrUsernameTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return domain.ErrEmailTaken
	default:
		return domain.WrapError(domain.ErrCodeConflict, "unique constraint violation", err)
	}
}
