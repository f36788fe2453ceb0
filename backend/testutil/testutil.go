// Package testutil builds throwaway databases, collaborators and a fully
// routed app for package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/routes"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const Password = "password123"

// Config returns a configuration suitable for tests. The payment secret is
// set so that Sign produces signatures the app accepts.
func Config() *config.Config {
	return &config.Config{
		ServerPort:        "0",
		CORSOrigins:       "*",
		DBDriver:          "sqlite",
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
		RazorpayKeySecret: "rzp_test_secret",
		PaymentCurrency:   "INR",
		FrontendURL:       "http://localhost:5173",
		EmailFrom:         "no-reply@coursehub.test",
		EmailFromName:     "CourseHub",
		CatalogCacheTTL:   time.Minute,
	}
}

func Logger() *zap.Logger {
	return zap.NewNop()
}

// DB opens a private in-memory SQLite database with the full schema.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, models.AutoMigrate(db))
	return db
}

// SeedUser inserts a user whose password is Password.
func SeedUser(tb testing.TB, db *gorm.DB, name, role string) *models.User {
	tb.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(tb, err)

	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@coursehub.test", name, uuid.NewString()[:8]),
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(tb, db.Create(user).Error)
	return user
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructor *models.User, title string, price float64) *models.Course {
	tb.Helper()

	course := &models.Course{
		Title:        title,
		Description:  title + " description",
		Price:        price,
		InstructorID: instructor.ID,
	}
	require.NoError(tb, db.Create(course).Error)
	return course
}

func SeedLesson(tb testing.TB, db *gorm.DB, course *models.Course, title string) *models.Lesson {
	tb.Helper()

	lesson := &models.Lesson{CourseID: course.ID, Title: title}
	require.NoError(tb, db.Create(lesson).Error)
	return lesson
}

// Token returns an Authorization header value for user.
func Token(tb testing.TB, cfg *config.Config, user *models.User) string {
	tb.Helper()

	token, err := utils.GenerateJWTToken(user.ID, cfg)
	require.NoError(tb, err)
	return "Bearer " + token
}

// FakeGateway records order requests and answers with a synthetic order.
type FakeGateway struct {
	mu     sync.Mutex
	Orders []services.OrderRequest
	Err    error
}

func (g *FakeGateway) CreateOrder(_ context.Context, req services.OrderRequest) (map[string]interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	g.Orders = append(g.Orders, req)
	return map[string]interface{}{
		"id":       fmt.Sprintf("order_test_%d", len(g.Orders)),
		"entity":   "order",
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	}, nil
}

// RecordingMailer keeps every email it is asked to send. With Err set it
// records the attempt and fails.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []services.Email
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, msg services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, msg)
	return m.Err
}

func (m *RecordingMailer) Sent() []services.Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]services.Email(nil), m.sent...)
}

// Env is a routed app over a fresh database.
type Env struct {
	App      *fiber.App
	DB       *gorm.DB
	Cfg      *config.Config
	Services *services.Services
	Gateway  *FakeGateway
	Mailer   *RecordingMailer
}

func NewEnv(tb testing.TB) *Env {
	tb.Helper()

	db := DB(tb)
	cfg := Config()
	gateway := &FakeGateway{}
	mailer := &RecordingMailer{}
	svc := services.Compose(db, cfg, Logger(), mailer, gateway, services.NewNoopCatalogCache())

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	routes.SetupRoutes(app, db, cfg, svc)

	return &Env{App: app, DB: db, Cfg: cfg, Services: svc, Gateway: gateway, Mailer: mailer}
}

// Do sends a request with an optional JSON body and Authorization header.
func (e *Env) Do(tb testing.TB, method, path string, body interface{}, token string) *http.Response {
	tb.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(tb, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(tb, err)
	return resp
}

// Decode reads a JSON response body into out.
func Decode(tb testing.TB, resp *http.Response, out interface{}) {
	tb.Helper()
	defer resp.Body.Close()

	require.NoError(tb, json.NewDecoder(resp.Body).Decode(out))
}
