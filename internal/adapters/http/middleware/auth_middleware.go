package middleware

import (
	"strings"

	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/pkg/jwt"
	"qcc-stakevault/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth creates authentication middleware for the admin routes
func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("admin_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Admin token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAdminToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Admin token expired")
			}
			return response.Unauthorized(c, "Invalid admin token")
		}

		if claims.Role != "ADMIN" {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}

		// 5. Set session info in context
		c.Locals("tokenID", claims.TokenID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}
