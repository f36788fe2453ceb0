package controllers

import (
	"coursehub/backend/middleware"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// GetMe godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile without secret fields
// @Tags users
// @Produce json
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [get]
func (uc *UserController) GetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.JSON(c, user.Public())
}
