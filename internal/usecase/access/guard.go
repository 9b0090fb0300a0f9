package access

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/pkg/config"
)

// Guard decides whether a user may request a report right now.
// Both the bot and the HTTP API go through it.
type Guard struct {
	checkAdmin bool
	adminID    int64
	limiter    cache.Limiter
	logger     *zap.Logger
}

// NewGuard creates a guard. limiter may be nil to disable rate limiting.
func NewGuard(cfg config.AccessConfig, limiter cache.Limiter, logger *zap.Logger) *Guard {
	return &Guard{
		checkAdmin: cfg.CheckAdmin,
		adminID:    cfg.AdminID,
		limiter:    limiter,
		logger:     logger,
	}
}

// IsAllowedUser reports whether userID passes the admin allow list
func (g *Guard) IsAllowedUser(userID int64) bool {
	return !g.checkAdmin || userID == g.adminID
}

// Admit checks the allow list and consumes one unit of the user's quota.
// A failing limiter admits the request.
func (g *Guard) Admit(ctx context.Context, userID int64) (cache.Decision, error) {
	if !g.IsAllowedUser(userID) {
		return cache.Decision{}, fmt.Errorf("%w: user %d is not the admin", usecaseErrors.ErrForbidden, userID)
	}
	if g.limiter == nil {
		return cache.Decision{Allowed: true}, nil
	}

	decision, err := g.limiter.Allow(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("⚠️ Rate limiter unavailable, admitting request",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return cache.Decision{Allowed: true}, nil
	}

	if !decision.Allowed {
		return decision, fmt.Errorf("%w: %d of %d used", usecaseErrors.ErrRateLimited, decision.Count, decision.Limit)
	}
	return decision, nil
}
