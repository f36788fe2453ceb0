package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog services.CatalogCache
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, catalog services.CatalogCache) *CoursesController {
	if catalog == nil {
		catalog = services.NewNoopCatalogCache()
	}
	return &CoursesController{DB: db, Cfg: cfg, Catalog: catalog}
}

type CreateCourseRequest struct {
	Title       string     `json:"title" validate:"required" example:"Go for beginners"`
	Description string     `json:"description" validate:"required"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0" example:"500"`
	LiveLink    string     `json:"liveLink"`
	LiveDate    *time.Time `json:"liveDate"`
}

// UpdateCourseRequest carries a partial update: nil fields keep their stored value.
type UpdateCourseRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	LiveLink    *string    `json:"liveLink"`
	LiveDate    *time.Time `json:"liveDate"`
}

func selectPublicInstructor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

// findCourse loads a course or writes the 404/500 response itself.
func findCourse(c *fiber.Ctx, db *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := db.WithContext(c.UserContext()).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Course not found")
		}
		return nil, utils.InternalServerError(c, err.Error())
	}
	return &course, nil
}

// CreateCourse godoc
// @Summary Create course
// @Description Creates a course owned by the calling instructor
// @Tags courses
// @Accept json
// @Produce json
// @Param input body CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input CreateCourseRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	course := models.Course{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: user.ID,
		LiveLink:     input.LiveLink,
		LiveDate:     input.LiveDate,
	}
	if input.Price != nil {
		course.Price = *input.Price
	}

	if err := cc.DB.WithContext(c.UserContext()).Create(&course).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	cc.Catalog.Invalidate(c.UserContext())

	return utils.Created(c, course)
}

// GetCourses godoc
// @Summary List courses
// @Description Public catalog with each instructor's name and email
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	cached, generation, ok := cc.Catalog.Get(c.UserContext())
	if ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(cached)
	}

	courses := []models.Course{}
	if err := cc.DB.WithContext(c.UserContext()).
		Preload("Instructor", selectPublicInstructor).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	payload, err := json.Marshal(courses)
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	cc.Catalog.Set(c.UserContext(), generation, payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(payload)
}

// GetCourse godoc
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.WithContext(c.UserContext()).
		Preload("Instructor", selectPublicInstructor).
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, err.Error())
	}

	return utils.JSON(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Description Partial update; only the owning instructor may call it
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input UpdateCourseRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	course, err := findCourse(c, cc.DB, courseID)
	if course == nil {
		return err
	}

	// Only the instructor who created the course can update it
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "You are not authorized to update this course")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.LiveLink != nil {
		course.LiveLink = *input.LiveLink
	}
	if input.LiveDate != nil {
		course.LiveDate = input.LiveDate
	}

	if err := cc.DB.WithContext(c.UserContext()).Save(course).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	cc.Catalog.Invalidate(c.UserContext())

	return utils.JSON(c, course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Description Deletes the course with its lessons, discussions and progress. Enrollments and payments are kept.
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.MessageResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := findCourse(c, cc.DB, courseID)
	if course == nil {
		return err
	}

	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "You are not authorized to delete this course")
	}

	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		progressIDs := tx.Model(&models.Progress{}).Select("id").Where("course_id = ?", course.ID)
		if err := tx.Where("progress_id IN (?)", progressIDs).Delete(&models.ProgressLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Discussion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	cc.Catalog.Invalidate(c.UserContext())

	return utils.Message(c, "Course deleted successfully")
}
