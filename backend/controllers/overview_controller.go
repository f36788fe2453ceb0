package controllers

import (
	"strconv"
	"strings"
	"time"

	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OverviewController struct {
	DB *gorm.DB
}

func NewOverviewController(db *gorm.DB) *OverviewController {
	return &OverviewController{DB: db}
}

// CourseSummary is a catalog entry with its popularity figures.
type CourseSummary struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Instructor  *models.PublicUser `json:"instructor,omitempty"`
	LiveDate    *time.Time         `json:"liveDate,omitempty"`
	Lessons     int64              `json:"lessons"`
	Enrollments int64              `json:"enrollments"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// SearchCourses godoc
// @Summary Search courses
// @Description Case-insensitive search over title and description
// @Tags courses
// @Produce json
// @Param search query string false "Text to look for"
// @Param maxPrice query number false "Upper price bound"
// @Param sort query string false "popularity (default), newest, price_asc, price_desc"
// @Success 200 {array} CourseSummary
// @Failure 400 {object} utils.ErrorResponse
// @Router /courses/search [get]
func (oc *OverviewController) SearchCourses(c *fiber.Ctx) error {
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	sort := c.Query("sort", "popularity")

	query := oc.DB.WithContext(c.UserContext()).
		Preload("Instructor", selectPublicInstructor)

	// Поиск по названию/описанию
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ?", like, like)
	}

	if v := c.Query("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil || maxPrice < 0 {
			return utils.BadRequest(c, "Invalid maxPrice")
		}
		query = query.Where("courses.price <= ?", maxPrice)
	}

	// Сортировка
	switch sort {
	case "newest":
		query = query.Order("courses.created_at DESC")
	case "price_asc":
		query = query.Order("courses.price ASC")
	case "price_desc":
		query = query.Order("courses.price DESC")
	case "popularity":
		query = query.Order("(SELECT COUNT(*) FROM enrollments WHERE enrollments.course_id = courses.id) DESC").
			Order("courses.created_at DESC")
	default:
		return utils.BadRequest(c, "Invalid sort, use popularity, newest, price_asc or price_desc")
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}

	ids := make([]uint, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
	}
	enrollments, err := countByCourse(oc.DB.WithContext(c.UserContext()).Model(&models.Enrollment{}), ids)
	if err != nil {
		return utils.InternalServerError(c, "Failed to count enrollments")
	}
	lessons, err := countByCourse(oc.DB.WithContext(c.UserContext()).Model(&models.Lesson{}), ids)
	if err != nil {
		return utils.InternalServerError(c, "Failed to count lessons")
	}

	// Формируем упрощенный ответ
	result := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		summary := CourseSummary{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			Price:       course.Price,
			LiveDate:    course.LiveDate,
			Lessons:     lessons[course.ID],
			Enrollments: enrollments[course.ID],
			CreatedAt:   course.CreatedAt,
		}
		if course.Instructor != nil {
			public := course.Instructor.Public()
			summary.Instructor = &public
		}
		result = append(result, summary)
	}

	return utils.JSON(c, result)
}

// countByCourse counts the rows of the scoped model per course_id.
func countByCourse(scoped *gorm.DB, courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uint
		Total    int64
	}
	if err := scoped.
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}
