package controllers

import (
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LessonsController struct {
	DB *gorm.DB
}

func NewLessonsController(db *gorm.DB) *LessonsController {
	return &LessonsController{DB: db}
}

type AddLessonRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
}

// AddLesson godoc
// @Summary Add lesson
// @Description Adds a lesson to a course owned by the caller
// @Tags lessons
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param input body AddLessonRequest true "Lesson data"
// @Success 201 {object} models.Lesson
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId}/lessons [post]
func (lc *LessonsController) AddLesson(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := findCourse(c, lc.DB, courseID)
	if course == nil {
		return err
	}

	// Only the instructor who created the course can add lessons
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Not authorized to add lessons")
	}

	var input AddLessonRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	lesson := models.Lesson{
		CourseID: course.ID,
		Title:    input.Title,
		Content:  input.Content,
		VideoURL: input.VideoURL,
	}
	if err := lc.DB.WithContext(c.UserContext()).Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.Created(c, lesson)
}

// GetLessons godoc
// @Summary List lessons
// @Description Lessons of a course in the order they were added
// @Tags lessons
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {array} models.Lesson
// @Router /courses/{courseId}/lessons [get]
func (lc *LessonsController) GetLessons(c *fiber.Ctx) error {
	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	lessons := []models.Lesson{}
	if err := lc.DB.WithContext(c.UserContext()).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.JSON(c, lessons)
}
