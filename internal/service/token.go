package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minhnq/go-auth-service/internal/util"
)

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalid          = errors.New("token invalid")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenUnsupported      = errors.New("token is unsupported")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

const bearerPrefix = "Bearer "

// TokenService подписывает и проверяет JWT. Decode чистый: он никогда не
// обращается к session store, живость сессии проверяется отдельно.
type TokenService struct {
	jwtSecretKey  []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	rememberMeTTL time.Duration
}

func NewTokenService(cfg *util.TokenConfig) *TokenService {
	return &TokenService{
		jwtSecretKey:  cfg.JwtSecretKey,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		rememberMeTTL: cfg.RememberMeTTL,
	}
}

// TokenClaims is the decoded view of a signed token.
type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

// IssueToken создает подписанный HS256 токен с subject = userID.
// JTI делает каждый выпуск уникальным даже внутри одной секунды.
func (ts *TokenService) IssueToken(userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(ts.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}

	return signedToken, nil
}

func (ts *TokenService) IssueAccessToken(userID string, now time.Time) (string, error) {
	return ts.IssueToken(userID, ts.accessTTL, now)
}

// IssueRefreshToken picks the TTL class from the rememberMe flag and
// reports the chosen TTL so the session record can inherit it.
func (ts *TokenService) IssueRefreshToken(userID string, rememberMe bool, now time.Time) (string, time.Duration, error) {
	ttl := ts.refreshTTL
	if rememberMe {
		ttl = ts.rememberMeTTL
	}

	token, err := ts.IssueToken(userID, ttl, now)
	if err != nil {
		return "", 0, err
	}

	return token, ttl, nil
}

// DecodeToken validates signature and expiry and returns the claims.
// Failures are reported as exactly one of the token sentinels.
func (ts *TokenService) DecodeToken(token string) (*TokenClaims, error) {
	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: alg %s", ErrTokenUnsupported, t.Method.Alg())
			}
			return ts.jwtSecretKey, nil
		},
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ExtractTokenFromBearer вырезает токен из заголовка "Bearer <token>".
// Все, что не соответствует схеме, дает пустую строку (аноним, не ошибка).
func ExtractTokenFromBearer(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
