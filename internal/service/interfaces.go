package service

import (
	"context"

	"github.com/minhnq/go-auth-service/internal/models"
)

// CredentialVerifier checks a submitted password against the stored hash.
// Unknown identity and wrong password are both ErrBadCredentials; the
// distinction exists only in server-side logs.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*models.User, error)
}

// RoleProvider resolves the single authority attached to a principal.
type RoleProvider interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// SecurityNotifier delivers session security events out of band.
type SecurityNotifier interface {
	NotifySessionEvent(ctx context.Context, event string, data map[string]interface{})
}
