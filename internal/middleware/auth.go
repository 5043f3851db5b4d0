package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/utils"
)

const authUserKey = "auth_user"

// AuthUser is the resolved caller identity threaded through request handling.
type AuthUser struct {
	ID    string
	Email string
	Role  string
}

// IsTrainer reports whether the caller holds the trainer role.
func (u AuthUser) IsTrainer() bool {
	return u.Role == models.RoleTrainer
}

// Identity is the claim set extracted from a verified bearer token.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

// UserResolver provisions or fetches the local user record for an identity.
type UserResolver interface {
	Resolve(ctx context.Context, identity Identity) (models.User, error)
}

// Authenticate verifies the bearer token against the identity provider's
// shared secret and resolves the caller to a local user record, creating it
// on first sight.
func Authenticate(secret string, resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "no authorization header")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		identity := identityFromClaims(claims)
		if identity.ID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		user, err := resolver.Resolve(c.Context(), identity)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
		}

		c.Locals(authUserKey, AuthUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})

		return c.Next()
	}
}

// Caller returns the authenticated user bound to the request, if any.
func Caller(c *fiber.Ctx) (AuthUser, bool) {
	value := c.Locals(authUserKey)
	if value == nil {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	return user, ok
}

// SetCaller binds an authenticated user to the request. Used by tests to
// bypass token verification.
func SetCaller(c *fiber.Ctx, user AuthUser) {
	c.Locals(authUserKey, user)
}

func identityFromClaims(claims jwt.MapClaims) Identity {
	identity := Identity{}

	if sub, ok := claims["sub"].(string); ok {
		identity.ID = strings.TrimSpace(sub)
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = strings.TrimSpace(email)
	}

	metadata, ok := claims["user_metadata"].(map[string]interface{})
	if !ok {
		return identity
	}

	if role, ok := metadata["role"].(string); ok {
		identity.Role = strings.ToLower(strings.TrimSpace(role))
	}
	if name, ok := metadata["display_name"].(string); ok {
		identity.DisplayName = strings.TrimSpace(name)
	}

	return identity
}
