package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/airo-kpi/redo-service/internal/auth"
	"github.com/airo-kpi/redo-service/internal/persistence"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

// RateLimitMiddleware caps report generation per client per minute using a
// redis counter. When redis is unreachable the request is allowed through;
// losing rate limiting is preferable to losing reporting.
func RateLimitMiddleware(store *persistence.Redis, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit <= 0 {
			return c.Next()
		}

		caller := c.IP()
		if principal, ok := auth.PrincipalFromContext(c); ok {
			caller = principal.ClientID
		}

		key := fmt.Sprintf("ratelimit:reports:%s:%s", caller, time.Now().Format("200601021504"))
		count, err := store.IncrWithTTL(c.UserContext(), key, time.Minute)
		if err != nil {
			logger.Warn("rate limit check unavailable", zap.Error(err))
			return c.Next()
		}
		if count > int64(limit) {
			return apperrors.NewRateLimited("report rate limit exceeded, retry later")
		}
		return c.Next()
	}
}
