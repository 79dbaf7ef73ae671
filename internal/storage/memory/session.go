package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
)

type entry struct {
	session  models.Session
	deadline time.Time
}

// InMemorySessionStore is the map-based SessionStore adapter used in tests
// and local runs. Expired records are pruned lazily on lookup.
type InMemorySessionStore struct {
	mu            sync.Mutex
	byID          map[string]entry
	byToken       map[string]string
	byUserRefresh map[string]string
	log           *zap.SugaredLogger
}

func NewSessionStore(log *zap.SugaredLogger) *InMemorySessionStore {
	return &InMemorySessionStore{
		byID:          make(map[string]entry),
		byToken:       make(map[string]string),
		byUserRefresh: make(map[string]string),
		log:           log,
	}
}

func (m *InMemorySessionStore) Save(_ context.Context, session models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[session.ID] = entry{session: session, deadline: time.Now().Add(ttl)}
	m.byToken[session.AccessToken] = session.ID
	m.byToken[session.RefreshToken] = session.ID
	m.byUserRefresh[userRefreshKey(session.UserID, session.RefreshToken)] = session.ID

	m.log.Debugw("Session saved", "sessionID", session.ID, "userID", session.UserID, "ttl", ttl)

	return nil
}

func (m *InMemorySessionStore) FindByToken(_ context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.findLocked(m.byToken[token])
}

func (m *InMemorySessionStore) FindByUserAndRefreshToken(_ context.Context, userID, refreshToken string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.findLocked(m.byUserRefresh[userRefreshKey(userID, refreshToken)])
}

func (m *InMemorySessionStore) Delete(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(session.ID)

	return nil
}

func (m *InMemorySessionStore) findLocked(id string) (*models.Session, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	if !e.deadline.After(time.Now()) {
		m.removeLocked(id)
		return nil, storage.ErrSessionNotFound
	}

	session := e.session
	return &session, nil
}

func (m *InMemorySessionStore) removeLocked(id string) {
	e, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	delete(m.byToken, e.session.AccessToken)
	delete(m.byToken, e.session.RefreshToken)
	delete(m.byUserRefresh, userRefreshKey(e.session.UserID, e.session.RefreshToken))
}

func userRefreshKey(userID, refreshToken string) string {
	return userID + ":" + refreshToken
}
