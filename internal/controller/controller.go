package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/service"
)

type Controller struct {
	zapLogger   *zap.SugaredLogger
	authService *service.AuthService
	credentials *service.UserCredentialService
}

func NewController(logger *zap.SugaredLogger, authService *service.AuthService, credentials *service.UserCredentialService) *Controller {
	return &Controller{
		zapLogger:   logger,
		authService: authService,
		credentials: credentials,
	}
}

// RegisterHandlers wires the auth routes onto the given group. The
// authRequired guard is injected by the API layer to avoid an import cycle.
func RegisterHandlers(g *echo.Group, c *Controller, authRequired echo.MiddlewareFunc) {
	g.GET("/ping", c.CheckServer)

	auth := g.Group("/auth")
	auth.POST("/login", c.Login)
	auth.POST("/register", c.Register)
	auth.GET("/refresh", c.Refresh)
	auth.GET("/logout", c.Logout, authRequired)
	auth.GET("/me", c.Me, authRequired)
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (POST /api/auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password, req.RememberMe, clientMetadata(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, pair)
}

// (POST /api/auth/register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := c.credentials.Register(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.RegisterResponse{UserID: user.ID, Email: user.Email})
}

// (GET /api/auth/refresh). The Authorization header carries the refresh
// token; the old pair is invalidated before the new one is returned.
func (c *Controller) Refresh(ctx echo.Context) error {
	token := service.ExtractTokenFromBearer(ctx.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Authorization header must carry a refresh token")
	}

	pair, err := c.authService.Refresh(ctx.Request().Context(), token, clientMetadata(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, pair)
}

// (GET /api/auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	principal, ok := ctx.Get(models.MwPrincipalKey).(models.Principal)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	err := c.authService.Logout(ctx.Request().Context(), principal, ctx.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// (GET /api/auth/me).
func (c *Controller) Me(ctx echo.Context) error {
	principal, ok := ctx.Get(models.MwPrincipalKey).(models.Principal)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	return ctx.JSON(http.StatusOK, principal)
}

func clientMetadata(ctx echo.Context) models.ClientMetadata {
	return models.ClientMetadata{
		IPAddress: ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}
}
