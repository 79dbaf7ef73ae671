package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
	"github.com/minhnq/go-auth-service/internal/storage/memory"
)

func newTestSession() models.Session {
	now := time.Now()
	return models.Session{
		ID:           uuid.NewString(),
		UserID:       "user-1",
		AccessToken:  "access-" + uuid.NewString(),
		RefreshToken: "refresh-" + uuid.NewString(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestSaveAndFind(t *testing.T) {
	store := memory.NewSessionStore(zap.NewNop().Sugar())
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Hour))

	byAccess, err := store.FindByToken(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byAccess.ID)

	byRefresh, err := store.FindByToken(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byRefresh.ID)

	byUser, err := store.FindByUserAndRefreshToken(ctx, session.UserID, session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byUser.ID)

	_, err = store.FindByToken(ctx, "no-such-token")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	store := memory.NewSessionStore(zap.NewNop().Sugar())
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Hour))
	require.NoError(t, store.Delete(ctx, &session))

	_, err := store.FindByToken(ctx, session.AccessToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	// deleting again is a no-op
	require.NoError(t, store.Delete(ctx, &session))
}

func TestExpiryIsLazy(t *testing.T) {
	store := memory.NewSessionStore(zap.NewNop().Sugar())
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, 5*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	_, err := store.FindByToken(ctx, session.AccessToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.FindByUserAndRefreshToken(ctx, session.UserID, session.RefreshToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}
