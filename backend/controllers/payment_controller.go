package controllers

import (
	"errors"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PaymentController struct {
	Payments *services.Payments
	Logger   *zap.Logger
}

func NewPaymentController(payments *services.Payments, logger *zap.Logger) *PaymentController {
	return &PaymentController{Payments: payments, Logger: logger.With(zap.String("controller", "PaymentController"))}
}

type CreateOrderRequest struct {
	CourseID uint `json:"courseId" validate:"required"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	CourseID  uint   `json:"courseId" validate:"required"`
}

type VerifyPaymentResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment,omitempty"`
}

// CreateOrder godoc
// @Summary Create payment order
// @Description Requests a gateway order for the course price in minor units and returns it unchanged
// @Tags payment
// @Accept json
// @Produce json
// @Param input body CreateOrderRequest true "Course to pay for"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payment/create-order [post]
func (pc *PaymentController) CreateOrder(c *fiber.Ctx) error {
	var input CreateOrderRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	order, err := pc.Payments.CreateOrder(c.UserContext(), input.CourseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		pc.Logger.Error("order creation failed", zap.Uint("course_id", input.CourseID), zap.Error(err))
		return utils.InternalServerError(c, "Razorpay order creation failed")
	}

	return utils.JSON(c, order)
}

// VerifyPayment godoc
// @Summary Verify payment
// @Description Checks the gateway signature and enrolls the caller in the course
// @Tags payment
// @Accept json
// @Produce json
// @Param input body VerifyPaymentRequest true "Gateway proof"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 400 {object} VerifyPaymentResponse
// @Failure 404 {object} VerifyPaymentResponse
// @Security ApiKeyAuth
// @Router /payment/verify [post]
func (pc *PaymentController) VerifyPayment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input VerifyPaymentRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	enrollment, created, err := pc.Payments.Verify(c.UserContext(), user, services.Verification{
		OrderID:   input.OrderID,
		PaymentID: input.PaymentID,
		Signature: input.Signature,
		CourseID:  input.CourseID,
	})
	switch {
	case errors.Is(err, services.ErrInvalidSignature):
		pc.Logger.Warn("payment signature mismatch", zap.Uint("user_id", user.ID), zap.String("order_id", input.OrderID))
		return c.Status(fiber.StatusBadRequest).JSON(VerifyPaymentResponse{Message: "Invalid signature"})
	case errors.Is(err, services.ErrCourseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(VerifyPaymentResponse{Message: "Course not found"})
	case err != nil:
		pc.Logger.Error("payment verification failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(VerifyPaymentResponse{Message: "Server error"})
	}

	if !created {
		return utils.JSON(c, VerifyPaymentResponse{Success: true, Message: "Already enrolled"})
	}
	return utils.JSON(c, VerifyPaymentResponse{
		Success:    true,
		Message:    "Payment verified & enrolled successfully!",
		Enrollment: enrollment,
	})
}
