package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktracker/backend/domain"
	appLogger "github.com/tasktracker/backend/pkg/logger"
	"github.com/tasktracker/backend/repository"
)

// UseCase implements registration, credential checks, and the session
// lifecycle. Sessions are stored server side; the value handed to the
// browser is a signed token referencing the stored record, so a cookie
// alone cannot be forged or extended.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// Register creates a new user account. Uniqueness is checked up front
// so username conflicts are reported before email conflicts; the
// repository's constraint mapping backstops the race between check and
// insert.
func (uc *UseCase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, domain.ErrFieldsRequired
	}

	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both come back as ErrInvalidCredentials so the
// response does not leak which part failed.
func (uc *UseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// EstablishSession stores a fresh session for the user and returns the
// signed token the transport layer puts in the cookie, together with
// the stored record.
func (uc *UseCase) EstablishSession(ctx context.Context, user *domain.User) (string, *domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return "", nil, err
	}

	claims := jwt.MapClaims{
		"sid": session.ID,
		"sub": user.ID,
		"iat": session.CreatedAt.Unix(),
		"exp": session.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", nil, err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("session established",
		zap.String("session_id", session.ID),
		zap.String("user_id", user.ID))
	return token, session, nil
}

// CurrentUser resolves a token back to its user. Any failure along the
// way, from a bad signature to a deleted account, is reported as
// ErrUnauthorized.
func (uc *UseCase) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	sid, err := uc.sessionID(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, sid)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// EndSession revokes the session referenced by the token. Tokens that
// no longer parse have nothing left to revoke, so logout stays
// idempotent.
func (uc *UseCase) EndSession(ctx context.Context, token string) error {
	sid, err := uc.sessionID(token)
	if err != nil {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sid); err != nil {
		return err
	}
	appLogger.WithRequestID(ctx, uc.logger).Info("session ended", zap.String("session_id", sid))
	return nil
}

func (uc *UseCase) sessionID(tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthorized
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", domain.ErrUnauthorized
	}
	return sid, nil
}
