package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
)

const (
	sessionKeyPrefix = "sessions:id:"
	tokenKeyPrefix   = "sessions:tok:"
	userKeyPrefix    = "sessions:user:"
)

// SessionStore хранит запись сессии как JSON под surrogate id и два вида
// индексных ключей (по токену и по паре user+refresh). Все ключи пишутся
// с одним TTL, равным времени жизни refresh токена, поэтому Redis сам
// удаляет сессию вместе с индексами.
type SessionStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewSessionStore(client *redis.Client, opTimeout time.Duration) *SessionStore {
	return &SessionStore{client: client, opTimeout: opTimeout}
}

func (s *SessionStore) Save(ctx context.Context, session models.Session, ttl time.Duration) error {
	// Writes must land even if the client disconnects mid-request.
	ctx, cancel := s.detachedOpContext(ctx)
	defer cancel()

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl)
	pipe.Set(ctx, tokenKeyPrefix+session.AccessToken, session.ID, ttl)
	pipe.Set(ctx, tokenKeyPrefix+session.RefreshToken, session.ID, ttl)
	pipe.Set(ctx, userRefreshKey(session.UserID, session.RefreshToken), session.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("save session", err)
	}

	return nil
}

func (s *SessionStore) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.findByIndex(ctx, tokenKeyPrefix+token)
}

func (s *SessionStore) FindByUserAndRefreshToken(ctx context.Context, userID, refreshToken string) (*models.Session, error) {
	return s.findByIndex(ctx, userRefreshKey(userID, refreshToken))
}

func (s *SessionStore) Delete(ctx context.Context, session *models.Session) error {
	ctx, cancel := s.detachedOpContext(ctx)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+session.ID)
	pipe.Del(ctx, tokenKeyPrefix+session.AccessToken)
	pipe.Del(ctx, tokenKeyPrefix+session.RefreshToken)
	pipe.Del(ctx, userRefreshKey(session.UserID, session.RefreshToken))
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("delete session", err)
	}

	return nil
}

func (s *SessionStore) findByIndex(ctx context.Context, indexKey string) (*models.Session, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	id, err := s.client.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, storeErr("lookup session index", err)
	}

	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		// index key outlived the record, treat as a miss
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, storeErr("get session record", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	return &session, nil
}

func (s *SessionStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *SessionStore) detachedOpContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func userRefreshKey(userID, refreshToken string) string {
	return userKeyPrefix + userID + ":" + refreshToken
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrStoreUnavailable, err)
}
