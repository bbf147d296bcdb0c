package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"task-kpi-system.com/task-kpi-system/internal/auth"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	model "task-kpi-system.com/task-kpi-system/internal/models"
)

const identityKey = "identity"

// Authenticate verifies the bearer token and stores the caller identity on
// the request context. EventSource clients cannot set headers, so a token
// query parameter is accepted as well.
func Authenticate(manager *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				token = c.QueryParam("token")
			}
			if token == "" {
				return apperrors.ErrUnauthorized
			}

			identity, err := manager.Verify(token)
			if err != nil {
				return apperrors.ErrUnauthorized.Withf("invalid token: %v", err)
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// Identity returns the verified caller stored by Authenticate.
func Identity(c echo.Context) (model.Identity, bool) {
	identity, ok := c.Get(identityKey).(model.Identity)
	return identity, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
