package middleware

import (
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/cyberon-reporter/errors"
	"github.com/johnquangdev/cyberon-reporter/pkg/jwt"
)

const (
	// UserIDKey is the echo context key holding the caller's int64 user id
	UserIDKey = "user_id"

	accessTokenCookie = "access_token"
)

// EchoAuth returns an Echo middleware that validates the access token and
// sets "user_id" (int64) into the Echo context
func EchoAuth(jwtManager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return errors.ErrTokenExpired()
				}
				return errors.ErrInvalidToken()
			}

			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id set by EchoAuth
func GetUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(UserIDKey).(int64)
	return id, ok
}

// extractToken reads the Authorization header first, then the cookie
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}

	return ""
}
