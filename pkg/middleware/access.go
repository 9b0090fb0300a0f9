package middleware

import (
	stdErrors "errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/cyberon-reporter/errors"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/access"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
)

// RequireAccess middleware: only let the allowed user through and only
// while their report quota lasts. Needs "user_id" (int64) set by auth.
func RequireAccess(guard *access.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(int64)
			if !ok {
				return errors.ErrUnauthenticated()
			}

			decision, err := guard.Admit(c.Request().Context(), userID)

			if decision.Limit > 0 {
				remaining := int64(decision.Limit) - decision.Count
				if remaining < 0 {
					remaining = 0
				}
				h := c.Response().Header()
				h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
				h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			}

			switch {
			case err == nil:
				return next(c)
			case stdErrors.Is(err, usecaseErrors.ErrForbidden):
				return errors.ErrPermissionDenied("create reports")
			case stdErrors.Is(err, usecaseErrors.ErrRateLimited):
				retry := int(decision.ResetIn/time.Second) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return errors.ErrRateLimited(decision.Limit, decision.ResetIn)
			default:
				return errors.ErrInternal(err)
			}
		}
	}
}
