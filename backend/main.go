package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/routes"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		EnableColors: cfg.LogFormat != "json",
	})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Initialize database
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}

	svc := services.New(db, cfg, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "coursehub",
		ErrorHandler: utils.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, svc)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
