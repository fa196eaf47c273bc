package middleware

import (
	"strings"

	"univida-claims/internal/config"
	"univida-claims/internal/core/domain"
	"univida-claims/internal/pkg/jwt"
	"univida-claims/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ActorMiddleware resolves the operator identity from the bearer token and
// stores it in the request context. Every audited mutation needs an actor.
func ActorMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Operator token required")
		}

		claims, err := jwt.ValidateOperatorToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Operator token expired")
			}
			return response.Unauthorized(c, "Invalid operator token")
		}

		c.Locals("actorName", claims.Name)
		c.Locals("actorRole", claims.Role)

		return c.Next()
	}
}

// Actor reads the resolved actor from the request context
func Actor(c *fiber.Ctx) domain.Actor {
	name, _ := c.Locals("actorName").(string)
	role, _ := c.Locals("actorRole").(string)
	return domain.Actor{Name: name, Role: role}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("actorRole").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}
