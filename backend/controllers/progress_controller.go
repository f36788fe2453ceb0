package controllers

import (
	"errors"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressController struct {
	DB *gorm.DB
}

func NewProgressController(db *gorm.DB) *ProgressController {
	return &ProgressController{DB: db}
}

type MarkCompleteResponse struct {
	Message          string `json:"message"`
	CompletedLessons []uint `json:"completedLessons"`
}

type ProgressResponse struct {
	Course           uint            `json:"course"`
	CompletedLessons []models.Lesson `json:"completedLessons"`
}

// MarkComplete godoc
// @Summary Mark lesson completed
// @Description Adds the lesson to the caller's completed set for its course. Repeated calls are no-ops.
// @Tags progress
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} MarkCompleteResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/complete/{lessonId} [post]
func (pc *ProgressController) MarkComplete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	lessonID, ok := utils.ParamID(c, "lessonId")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := pc.DB.WithContext(c.UserContext()).First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, err.Error())
	}

	completed := []uint{}
	err := pc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		row := models.Progress{StudentID: user.ID, CourseID: lesson.CourseID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		var progress models.Progress
		if err := tx.Where("student_id = ? AND course_id = ?", user.ID, lesson.CourseID).
			First(&progress).Error; err != nil {
			return err
		}

		// set semantics: the composite key drops a repeated lesson
		link := models.ProgressLesson{ProgressID: progress.ID, LessonID: lesson.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}

		return tx.Model(&models.ProgressLesson{}).
			Where("progress_id = ?", progress.ID).
			Order("created_at ASC, lesson_id ASC").
			Pluck("lesson_id", &completed).Error
	})
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.JSON(c, MarkCompleteResponse{
		Message:          "Lesson marked as completed",
		CompletedLessons: completed,
	})
}

// GetProgress godoc
// @Summary Course progress
// @Description Lessons the caller has completed in a course; empty when nothing is completed yet
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} ProgressResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{courseId} [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var progress models.Progress
	err := pc.DB.WithContext(c.UserContext()).
		Preload("CompletedLessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.created_at ASC, lessons.id ASC")
		}).
		Where("student_id = ? AND course_id = ?", user.ID, courseID).
		First(&progress).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, err.Error())
	}

	lessons := progress.CompletedLessons
	if lessons == nil {
		lessons = []models.Lesson{}
	}

	return utils.JSON(c, ProgressResponse{Course: courseID, CompletedLessons: lessons})
}
