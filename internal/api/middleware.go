package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/service"
)

// BearerAuthMiddleware is the per-request authentication pipeline:
// extract -> decode -> store liveness -> principal bound to the context.
// A missing or malformed Authorization header means anonymous, not an
// error. Validation failures tag the context and the request continues
// unauthenticated; route guards decide whether that matters.
func BearerAuthMiddleware(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := service.ExtractTokenFromBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return next(c)
			}

			principal, err := auth.ValidateAccessToken(c.Request().Context(), token)
			if err != nil {
				c.Set(models.MwAuthErrorKey, err)
				return next(c)
			}

			c.Set(models.MwPrincipalKey, *principal)
			c.Set(models.MwTokenKey, token)

			return next(c)
		}
	}
}

// RequireAuth rejects requests that reached the handler without a bound
// principal. The most specific failure tag left by the pipeline drives the
// 401 message; the translation itself lives in the error handler.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(models.MwPrincipalKey).(models.Principal); ok {
			return next(c)
		}

		if err, ok := c.Get(models.MwAuthErrorKey).(error); ok {
			return err
		}

		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
}

// APIKeyAuthMiddleware resolves the calling tenant application from the
// X-API-Key header and stores the tenant id in the Echo context.
func APIKeyAuthMiddleware(apiKeys *service.APIKeyService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(models.MwAPIKeyHeader)
			if apiKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "API key is missing")
			}

			tenant, err := apiKeys.ResolveTenant(c.Request().Context(), apiKey)
			if err != nil {
				if errors.Is(err, service.ErrAPIKeyInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Error validating API key")
			}

			c.Set(models.MwTenantIDKey, tenant)

			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
