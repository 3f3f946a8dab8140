package middleware

import (
	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware validates the caller's JWT. Token issuance lives in the
// external auth system; this is only the boundary check.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
		return c.Next()
	}
}

// AdminMiddleware additionally requires the admin role.
func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil || user.Role != "admin" {
			return utils.Fail(c, fiber.StatusForbidden, "FORBIDDEN", "Admin access required")
		}

		return c.Next()
	}
}
