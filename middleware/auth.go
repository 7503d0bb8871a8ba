package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studioadmin/auth"
	"studioadmin/utils"
)

// RequireAdmin parses the Bearer session token and rejects callers that
// are not authenticated administrators. The resolved identity is stored in
// Locals("adminId") for handlers.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.UnauthorizedError("Admin authentication required", nil)
		}

		claims, err := auth.ParseSessionToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			return utils.UnauthorizedError("Invalid or expired session", err)
		}
		if claims.Role != "admin" {
			return utils.ForbiddenError("Admin role required", nil)
		}

		c.Locals("adminId", claims.AdminID)
		c.Locals("adminEmail", claims.Email)
		return c.Next()
	}
}
