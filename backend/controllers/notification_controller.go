package controllers

import (
	"errors"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

type CreateNotificationRequest struct {
	UserID  uint   `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=info enrollment reply"`
}

// CreateNotification godoc
// @Summary Create notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param input body CreateNotificationRequest true "Notification"
// @Success 201 {object} models.Notification
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /notifications [post]
func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	var input CreateNotificationRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	n, err := services.Notify(c.UserContext(), nc.DB, input.UserID, input.Message, input.Type)
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.Created(c, n)
}

// GetNotifications godoc
// @Summary My notifications
// @Description The caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Success 200 {array} models.Notification
// @Security ApiKeyAuth
// @Router /notifications [get]
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	notifications := []models.Notification{}
	if err := nc.DB.WithContext(c.UserContext()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.JSON(c, notifications)
}

// MarkRead godoc
// @Summary Mark notification read
// @Description Someone else's notification is reported as not found
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /notifications/{id}/read [put]
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.NotFound(c, "Not found")
	}

	db := nc.DB.WithContext(c.UserContext())

	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not found")
		}
		return utils.InternalServerError(c, err.Error())
	}

	if !n.Read {
		if err := db.Model(&n).Update("read", true).Error; err != nil {
			return utils.InternalServerError(c, err.Error())
		}
		n.Read = true
	}

	return utils.JSON(c, n)
}
