package controllers

import (
	"errors"
	"strings"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"Ana"`
	Email    string `json:"email" validate:"required,email" example:"ana@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret123"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor" example:"instructor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a student or instructor account and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	if count > 0 {
		return utils.BadRequest(c, "Email already registered")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest(c, "Email already registered")
		}
		return utils.InternalServerError(c, err.Error())
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.Created(c, AuthResponse{Token: token, User: user.Public()})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.JSON(c, AuthResponse{Token: token, User: user.Public()})
}
