package controllers

import (
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB *gorm.DB
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{DB: db}
}

// GetMyCourses godoc
// @Summary Enrolled courses
// @Description Courses the calling student is enrolled in, latest enrollment first
// @Tags enrollments
// @Produce json
// @Success 200 {array} models.Course
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /enrollments/my-courses [get]
func (ec *EnrollmentController) GetMyCourses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var enrollments []models.Enrollment
	if err := ec.DB.WithContext(c.UserContext()).
		Preload("Course").
		Preload("Course.Instructor", selectPublicInstructor).
		Where("student_id = ?", user.ID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	courses := make([]models.Course, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue // курс удалён, пропускаем
		}
		courses = append(courses, *e.Course)
	}

	return utils.JSON(c, courses)
}
