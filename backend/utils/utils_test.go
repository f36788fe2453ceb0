package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	id, err := ParseUserID(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseUserID(token, &config.Config{JWTSecret: "other", JWTTTL: time.Hour})
	assert.Error(t, err)

	expired, err := GenerateJWTToken(42, &config.Config{JWTSecret: cfg.JWTSecret, JWTTTL: -time.Minute})
	require.NoError(t, err)
	_, err = ParseUserID(expired, cfg)
	assert.Error(t, err)
}

func TestExtractUserIDFromToken(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateJWTToken(7, cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(&sampleRequest{Email: "bo@example.com", Password: "secret1"}))

	errs := Validate(&sampleRequest{Email: "nope", Password: "123", Role: "admin"})
	assert.Equal(t, map[string]string{
		"email":    "email",
		"password": "min=6",
		"role":     "oneof=student instructor",
	}, errs)
}

func TestParseBodyAndParamID(t *testing.T) {
	app := fiber.New()
	app.Post("/items/:id", func(c *fiber.Ctx) error {
		id, ok := ParamID(c, "id")
		if !ok {
			return BadRequest(c, "Invalid ID")
		}
		var input sampleRequest
		if ok, err := ParseBody(c, &input); !ok {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "email": input.Email})
	})

	post := func(path, body string) (int, ErrorResponse) {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		var out ErrorResponse
		_ = json.Unmarshal(raw, &out)
		return resp.StatusCode, out
	}

	status, _ := post("/items/3", `{"email":"bo@example.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, body := post("/items/0", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID", body.Message)

	status, body = post("/items/3", `{"email":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Cannot parse JSON", body.Message)

	status, body = post("/items/3", `{"email":"bo@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, map[string]interface{}{"password": "required"}, body.Details)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("db exploded") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "short and stout", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInitDBSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "coursehub.db")}

	db, err := InitDB(cfg, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []interface{}{
		&models.User{}, &models.Course{}, &models.Lesson{}, &models.Enrollment{}, &models.Payment{},
		&models.Progress{}, &models.ProgressLesson{}, &models.Discussion{}, &models.Notification{},
	} {
		assert.True(t, db.Migrator().HasTable(table), "%T", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitLogger(t *testing.T) {
	logger, err := InitLogger(LoggerConfig{Format: "json", Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = InitLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}
