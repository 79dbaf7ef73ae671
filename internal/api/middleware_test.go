package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/api"
	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/service"
	"github.com/minhnq/go-auth-service/internal/storage/memory"
	"github.com/minhnq/go-auth-service/internal/util"
)

type stubUsers struct{}

func (stubUsers) Verify(_ context.Context, email, password string) (*models.User, error) {
	if email == "user@example.com" && password == "secret-pass" {
		return &models.User{ID: "user-1", Email: email, Role: models.RoleUser}, nil
	}
	return nil, service.ErrBadCredentials
}

func (stubUsers) RoleOf(_ context.Context, _ string) (string, error) {
	return models.RoleUser, nil
}

type noopNotifier struct{}

func (noopNotifier) NotifySessionEvent(_ context.Context, _ string, _ map[string]interface{}) {}

type middlewareFixture struct {
	auth   *service.AuthService
	tokens *service.TokenService
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()

	log := zap.NewNop().Sugar()
	tokens := service.NewTokenService(&util.TokenConfig{
		JwtSecretKey:  []byte("test-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		RememberMeTTL: 720 * time.Hour,
	})

	auth := service.NewAuthService(tokens, memory.NewSessionStore(log), stubUsers{}, stubUsers{}, noopNotifier{}, log)

	return &middlewareFixture{auth: auth, tokens: tokens}
}

// runPipeline sends one request through BearerAuthMiddleware into a probe
// handler and reports what the pipeline bound to the context.
func runPipeline(t *testing.T, auth *service.AuthService, authHeader string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := api.BearerAuthMiddleware(auth)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	return c
}

func TestPipelineBindsPrincipal(t *testing.T) {
	f := newMiddlewareFixture(t)

	pair, err := f.auth.Login(context.Background(), "user@example.com", "secret-pass", false, models.ClientMetadata{})
	require.NoError(t, err)

	c := runPipeline(t, f.auth, "Bearer "+pair.AccessToken)

	principal, ok := c.Get(models.MwPrincipalKey).(models.Principal)
	require.True(t, ok)
	require.Equal(t, "user-1", principal.UserID)
	require.Equal(t, pair.AccessToken, c.Get(models.MwTokenKey))
	require.Nil(t, c.Get(models.MwAuthErrorKey))
}

func TestPipelineAnonymousWithoutHeader(t *testing.T) {
	f := newMiddlewareFixture(t)

	c := runPipeline(t, f.auth, "")
	require.Nil(t, c.Get(models.MwPrincipalKey))
	require.Nil(t, c.Get(models.MwAuthErrorKey))
}

func TestPipelineAnonymousOnWrongScheme(t *testing.T) {
	f := newMiddlewareFixture(t)

	// a non-Bearer scheme is not a failure, just anonymous
	c := runPipeline(t, f.auth, "Token abc.def.ghi")
	require.Nil(t, c.Get(models.MwPrincipalKey))
	require.Nil(t, c.Get(models.MwAuthErrorKey))
}

func TestPipelineTagsMalformedToken(t *testing.T) {
	f := newMiddlewareFixture(t)

	c := runPipeline(t, f.auth, "Bearer garbage")
	require.Nil(t, c.Get(models.MwPrincipalKey))

	err, ok := c.Get(models.MwAuthErrorKey).(error)
	require.True(t, ok)
	require.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestPipelineTagsRevokedToken(t *testing.T) {
	f := newMiddlewareFixture(t)

	token, err := f.tokens.IssueAccessToken("user-1", time.Now())
	require.NoError(t, err)

	c := runPipeline(t, f.auth, "Bearer "+token)
	require.Nil(t, c.Get(models.MwPrincipalKey))

	tagged, ok := c.Get(models.MwAuthErrorKey).(error)
	require.True(t, ok)
	require.ErrorIs(t, tagged, service.ErrTokenNotFound)
}

func TestRequireAuthReturnsTaggedError(t *testing.T) {
	f := newMiddlewareFixture(t)

	token, err := f.tokens.IssueAccessToken("user-1", time.Now())
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := api.BearerAuthMiddleware(f.auth)(api.RequireAuth(func(c echo.Context) error {
		t.Fatal("guarded handler must not run")
		return nil
	}))

	require.ErrorIs(t, handler(c), service.ErrTokenNotFound)
}

func TestRequireAuthWithoutToken(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/probe", nil), httptest.NewRecorder())

	err := api.RequireAuth(func(c echo.Context) error {
		t.Fatal("guarded handler must not run")
		return nil
	})(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
