package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse is returned by operations that have nothing but a status to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// ErrorHandler is the fiber.Config.ErrorHandler. Handlers that return an
// error instead of writing a response end up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return Error(c, status, err)
}

// JSON отправляет сущность как есть
func JSON(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Message отправляет ответ 200 с текстовым сообщением
func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(MessageResponse{Message: message})
}

// ValidationError создает JSON ответ для ошибок валидации
func ValidationError(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(fiber.StatusBadRequest),
		Message: "Validation failed",
		Details: errors,
	})
}

// NotFound отправляет ответ 404 Not Found
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

// BadRequest отправляет ответ 400 Bad Request
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized отправляет ответ 401 Unauthorized
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// Forbidden отправляет ответ 403 Forbidden
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, fiber.NewError(fiber.StatusForbidden, message))
}

// InternalServerError отправляет ответ 500 Internal Server Error
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}
