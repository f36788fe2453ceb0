package middleware

import (
	"errors"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userLocalsKey = "user"

// AuthMiddleware is the single authorization gate for protected routes: it
// validates the bearer token and loads the caller into the request locals.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := utils.ExtractBearerToken(c)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}

		userID, err := utils.ParseUserID(tokenString, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Invalid token")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "User not found")
			}
			return utils.InternalServerError(c, err.Error())
		}

		c.Locals(userLocalsKey, &user)
		return c.Next()
	}
}

// RequireRole rejects callers whose role differs from role. It must run after AuthMiddleware.
func RequireRole(role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if user.Role != role {
			return utils.Forbidden(c, message)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil outside AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}
