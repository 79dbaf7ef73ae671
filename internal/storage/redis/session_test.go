package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
	redisstore "github.com/minhnq/go-auth-service/internal/storage/redis"
)

func newTestStore(t *testing.T) (*redisstore.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisstore.NewSessionStore(client, time.Second), mr
}

func newTestSession() models.Session {
	now := time.Now().Truncate(time.Second)
	return models.Session{
		ID:           uuid.NewString(),
		UserID:       "user-1",
		AccessToken:  "access-" + uuid.NewString(),
		RefreshToken: "refresh-" + uuid.NewString(),
		RememberMe:   true,
		IPAddress:    "10.0.0.1",
		UserAgent:    "test-agent",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestSaveAndFind(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Hour))

	byAccess, err := store.FindByToken(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byAccess.ID)
	require.Equal(t, session.UserID, byAccess.UserID)
	require.True(t, byAccess.RememberMe)

	byRefresh, err := store.FindByToken(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byRefresh.ID)

	byUser, err := store.FindByUserAndRefreshToken(ctx, session.UserID, session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, byUser.ID)
}

func TestFindMiss(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.FindByToken(ctx, "no-such-token")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.FindByUserAndRefreshToken(ctx, "user-1", "no-such-token")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestRecordExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.FindByToken(ctx, session.AccessToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.FindByUserAndRefreshToken(ctx, session.UserID, session.RefreshToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDeleteRemovesAllKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Hour))
	require.NoError(t, store.Delete(ctx, &session))

	_, err := store.FindByToken(ctx, session.AccessToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.FindByToken(ctx, session.RefreshToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.FindByUserAndRefreshToken(ctx, session.UserID, session.RefreshToken)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	require.Empty(t, mr.Keys())
}

func TestStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Save(ctx, session, time.Hour))

	mr.Close()

	_, err := store.FindByToken(ctx, session.AccessToken)
	require.ErrorIs(t, err, storage.ErrStoreUnavailable)
	require.NotErrorIs(t, err, storage.ErrSessionNotFound)

	require.ErrorIs(t, store.Save(ctx, newTestSession(), time.Hour), storage.ErrStoreUnavailable)
	require.ErrorIs(t, store.Delete(ctx, &session), storage.ErrStoreUnavailable)
}
