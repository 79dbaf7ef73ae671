package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
)

var (
	ErrBadCredentials = errors.New("bad credentials")

	// ErrRefreshTokenExpired намеренно единственная внешняя ошибка всех
	// отказов refresh: истекшая подпись, отсутствующая сессия и битый
	// токен снаружи неразличимы.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrTokenNotFound = errors.New("token not found in session store")
)

const eventIPChange = "ip_change"

// AuthService управляет жизненным циклом сессии:
// login -> refresh (ротация)* -> logout или естественное истечение TTL.
type AuthService struct {
	tokens   *TokenService
	sessions storage.SessionStore
	verifier CredentialVerifier
	roles    RoleProvider
	notifier SecurityNotifier
	log      *zap.SugaredLogger
}

func NewAuthService(
	tokens *TokenService,
	sessions storage.SessionStore,
	verifier CredentialVerifier,
	roles RoleProvider,
	notifier SecurityNotifier,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		tokens:   tokens,
		sessions: sessions,
		verifier: verifier,
		roles:    roles,
		notifier: notifier,
		log:      log,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool, meta models.ClientMetadata) (*models.TokenPair, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	s.log.Infow("Login request accepted", "userID", user.ID)

	return s.generateTokens(ctx, user.ID, rememberMe, meta)
}

// Refresh rotates the token pair. The prior record is resolved by
// (userID, refreshToken), its rememberMe flag is inherited, and the record
// is deleted before reissue so the old pair cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta models.ClientMetadata) (*models.TokenPair, error) {
	claims, err := s.tokens.DecodeToken(refreshToken)
	if err != nil {
		s.log.Debugw("Refresh token rejected", "reason", err)
		return nil, ErrRefreshTokenExpired
	}

	prior, err := s.sessions.FindByUserAndRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrRefreshTokenExpired
		}
		return nil, fmt.Errorf("find session to rotate: %w", err)
	}

	if prior.IPAddress != "" && meta.IPAddress != "" && prior.IPAddress != meta.IPAddress {
		s.notifier.NotifySessionEvent(ctx, eventIPChange, map[string]interface{}{
			"user_id":    prior.UserID,
			"old_ip":     prior.IPAddress,
			"new_ip":     meta.IPAddress,
			"user_agent": meta.UserAgent,
		})
	}

	rememberMe := prior.RememberMe
	if err := s.sessions.Delete(ctx, prior); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return nil, fmt.Errorf("delete rotated session: %w", err)
	}

	return s.generateTokens(ctx, claims.UserID, rememberMe, meta)
}

// Logout revokes the session resolved by token-or-refresh lookup. A record
// owned by another user is never touched. A record that is already gone is
// treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, principal models.Principal, bearer string) error {
	token := ExtractTokenFromBearer(bearer)
	if token == "" {
		return ErrBadCredentials
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("find session to revoke: %w", err)
	}

	if session.UserID != principal.UserID {
		s.log.Warnw("Logout denied: session belongs to another user",
			"callerID", principal.UserID, "ownerID", session.UserID)
		return ErrBadCredentials
	}

	if err := s.sessions.Delete(ctx, session); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	s.log.Infow("Session revoked", "userID", session.UserID, "sessionID", session.ID)

	return nil
}

// ValidateAccessToken runs the per-request validation chain: decode,
// store liveness, expiry recheck. A valid signature alone is not enough,
// the session record must still exist.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.tokens.DecodeToken(token)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.FindByToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("check session liveness: %w", err)
	}

	// decode already checked exp, recheck against the clock anyway
	if !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	role, err := s.roles.RoleOf(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve role for %s: %w", claims.UserID, err)
	}

	return &models.Principal{UserID: claims.UserID, Role: role}, nil
}

// generateTokens — единственная точка выпуска токенов. TTL записи сессии
// всегда берется от refresh токена, не от access.
func (s *AuthService) generateTokens(ctx context.Context, userID string, rememberMe bool, meta models.ClientMetadata) (*models.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.tokens.IssueAccessToken(userID, now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, refreshTTL, err := s.tokens.IssueRefreshToken(userID, rememberMe, now)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	session := models.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RememberMe:   rememberMe,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
		ExpiresAt:    now.Add(refreshTTL),
	}
	if err := s.sessions.Save(ctx, session, refreshTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	role, err := s.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve role for %s: %w", userID, err)
	}

	s.log.Infow("Token pair issued", "userID", userID, "rememberMe", rememberMe)

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       userID,
		Role:         role,
	}, nil
}
