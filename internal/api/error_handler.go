package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/service"
	"github.com/minhnq/go-auth-service/internal/storage"
	"github.com/minhnq/go-auth-service/internal/util"
)

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		switch {
		case errors.Is(err, storage.ErrStoreUnavailable):
			log.Errorw("Session store unavailable", "error", err, "uri", c.Request().RequestURI)
			c.JSON(http.StatusServiceUnavailable, map[string]string{"reason": "session store unavailable"})
			return
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, map[string]string{"reason": "email already taken"})
			return
		case isUnauthorizedError(err):
			c.JSON(http.StatusUnauthorized, map[string]string{"reason": authFailureMessage(err)})
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			c.JSON(respErr.Status, map[string]string{"reason": respErr.Msg})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			if err := c.JSON(he.Code, map[string]string{"reason": fmt.Sprintf("%v", he.Message)}); err != nil {
				log.Errorw("failed to write json response", "error", err)
			}
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		c.JSON(http.StatusInternalServerError, map[string]string{"reason": "internal server error"})
	}
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, service.ErrBadCredentials) ||
		errors.Is(err, service.ErrRefreshTokenExpired) ||
		errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenMalformed) ||
		errors.Is(err, service.ErrTokenUnsupported) ||
		errors.Is(err, service.ErrTokenSignatureInvalid) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrTokenNotFound)
}

// authFailureMessage picks the human-readable 401 reason from the most
// specific failure available. No internals leak past these strings.
func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "Expired JWT token"
	case errors.Is(err, service.ErrTokenUnsupported):
		return "Unsupported JWT token"
	case errors.Is(err, service.ErrTokenMalformed):
		return "Invalid JWT token"
	case errors.Is(err, service.ErrTokenSignatureInvalid):
		return "Invalid JWT signature"
	case errors.Is(err, service.ErrTokenNotFound):
		return "Token is not found in session store"
	case errors.Is(err, service.ErrRefreshTokenExpired):
		return "Refresh token expired"
	case errors.Is(err, service.ErrBadCredentials):
		return "Bad credentials"
	default:
		return "Unauthorized"
	}
}
