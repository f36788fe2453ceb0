package routes

import (
	"coursehub/backend/config"
	"coursehub/backend/controllers"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc *services.Services) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return utils.Error(c, fiber.StatusServiceUnavailable, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	instructorOnly := middleware.RequireRole(models.RoleInstructor, "Only instructors can create courses")
	studentOnly := middleware.RequireRole(models.RoleStudent, "Only students can access this")

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController()
	api.Get("/users/me", authMiddleware, userController.GetMe)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, svc.Catalog)
	overviewController := controllers.NewOverviewController(db)
	analyticsController := controllers.NewAnalyticsController(db)
	api.Get("/courses", coursesController.GetCourses)
	api.Get("/courses/search", overviewController.SearchCourses)
	api.Get("/courses/:id", coursesController.GetCourse)
	api.Post("/courses", authMiddleware, instructorOnly, coursesController.CreateCourse)
	api.Put("/courses/:id", authMiddleware, coursesController.UpdateCourse)
	api.Delete("/courses/:id", authMiddleware, coursesController.DeleteCourse)
	api.Get("/courses/:id/analytics", authMiddleware, analyticsController.GetCourseAnalytics)

	// Lessons routes
	lessonsController := controllers.NewLessonsController(db)
	api.Get("/courses/:courseId/lessons", lessonsController.GetLessons)
	api.Post("/courses/:courseId/lessons", authMiddleware, lessonsController.AddLesson)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(db)
	api.Get("/enrollments/my-courses", authMiddleware, studentOnly, enrollmentController.GetMyCourses)

	// Payment routes
	paymentController := controllers.NewPaymentController(svc.Payments, svc.Logger)
	payment := api.Group("/payment", authMiddleware)
	payment.Post("/create-order", paymentController.CreateOrder)
	payment.Post("/verify", paymentController.VerifyPayment)

	// Progress routes
	progressController := controllers.NewProgressController(db)
	progress := api.Group("/progress", authMiddleware)
	progress.Post("/complete/:lessonId", progressController.MarkComplete)
	progress.Get("/:courseId", progressController.GetProgress)

	// Discussion routes
	discussionController := controllers.NewDiscussionController(db)
	api.Get("/discussions/:courseId", discussionController.GetThreads)
	api.Post("/discussions/:courseId", authMiddleware, discussionController.AddComment)
	api.Post("/discussions/:courseId/reply/:parentId", authMiddleware, discussionController.AddReply)

	// Notification routes
	notificationController := controllers.NewNotificationController(db)
	notifications := api.Group("/notifications", authMiddleware)
	notifications.Post("/", notificationController.CreateNotification)
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Put("/:id/read", notificationController.MarkRead)
}
