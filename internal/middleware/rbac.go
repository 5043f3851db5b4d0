package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/skillcam-io/skillcam-api/internal/utils"
)

// RequireRole ensures that the authenticated caller holds one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		caller, ok := Caller(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if _, ok := allowed[strings.ToLower(caller.Role)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "forbidden")
		}

		return c.Next()
	}
}
