package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/minhnq/go-auth-service/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")

	// ErrStoreUnavailable marks infrastructure failures of the session
	// store. It must never be reported to callers as a lookup miss.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// SessionStore is a TTL-indexed key-value store of session records.
// Records stop being returned once their TTL elapses; there is no
// explicit cleanup. A lookup miss is ErrSessionNotFound, not an error
// carrying data.
type SessionStore interface {
	Save(ctx context.Context, session models.Session, ttl time.Duration) error
	// FindByToken matches either the access token or the refresh token.
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	FindByUserAndRefreshToken(ctx context.Context, userID, refreshToken string) (*models.Session, error)
	Delete(ctx context.Context, session *models.Session) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
