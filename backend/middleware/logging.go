package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func LoggingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}

		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
