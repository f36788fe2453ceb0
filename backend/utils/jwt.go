package utils

import (
	"strings"
	"time"

	"coursehub/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const bearerPrefix = "Bearer "

func GenerateJWTToken(userID uint, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization scheme")
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), nil
}

// ParseUserID validates signature and expiry and returns the embedded user id.
func ParseUserID(tokenString string, cfg *config.Config) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	return uint(userIDFloat), nil
}

func ExtractUserIDFromToken(c *fiber.Ctx, cfg *config.Config) (uint, error) {
	tokenString, err := ExtractBearerToken(c)
	if err != nil {
		return 0, err
	}
	return ParseUserID(tokenString, cfg)
}
