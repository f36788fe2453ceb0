package controllers

import (
	"time"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB *gorm.DB
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

type CourseStats struct {
	TotalEnrollments  int64   `json:"totalEnrollments"`
	PaidEnrollments   int64   `json:"paidEnrollments"`
	Completed         int64   `json:"completed"`
	AvgCompletionRate float64 `json:"avgCompletionRate"`
	Discussions       int64   `json:"discussions"`
}

type LessonStats struct {
	LessonID    uint   `json:"lessonId"`
	LessonTitle string `json:"lessonTitle"`
	Completed   int64  `json:"completed"`
	Total       int64  `json:"total"`
}

type EnrollmentTrend struct {
	Date        string `json:"date"`
	Enrollments int    `json:"enrollments"`
}

type CourseAnalyticsResponse struct {
	CourseID    uint              `json:"courseId"`
	CourseTitle string            `json:"courseTitle"`
	Stats       CourseStats       `json:"stats"`
	LessonStats []LessonStats     `json:"lessonStats"`
	Enrollments []EnrollmentTrend `json:"enrollments"`
	Period      map[string]string `json:"period"`
}

// GetCourseAnalytics godoc
// @Summary Course analytics
// @Description Enrollment, completion and discussion figures for a course owned by the caller
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Param start_date query string false "YYYY-MM-DD, defaults to one month ago"
// @Param end_date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} CourseAnalyticsResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	// Парсим даты или устанавливаем значения по умолчанию
	now := time.Now().UTC()
	start, end := now.AddDate(0, -1, 0), now
	var err error
	if v := c.Query("start_date"); v != "" {
		if start, err = time.Parse(time.DateOnly, v); err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
	}
	if v := c.Query("end_date"); v != "" {
		if end, err = time.Parse(time.DateOnly, v); err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	course, err := findCourse(c, ac.DB, courseID)
	if course == nil {
		return err
	}

	// Проверяем права доступа (только для автора)
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "You don't have permission to view this analytics")
	}

	db := ac.DB.WithContext(c.UserContext())
	var stats CourseStats

	if err := db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&stats.TotalEnrollments).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	if err := db.Model(&models.Payment{}).Where("course_id = ?", course.ID).
		Distinct("enrollment_id").Count(&stats.PaidEnrollments).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	if err := db.Model(&models.Discussion{}).Where("course_id = ?", course.ID).Count(&stats.Discussions).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	var lessons []models.Lesson
	if err := db.Where("course_id = ?", course.ID).Order("created_at ASC, id ASC").Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	// Прогресс по урокам, только записанные студенты
	var perLesson []struct {
		LessonID  uint
		Completed int64
	}
	if err := db.Table("progress_lessons").
		Select("progress_lessons.lesson_id AS lesson_id, COUNT(*) AS completed").
		Joins("JOIN progresses ON progresses.id = progress_lessons.progress_id").
		Joins("JOIN enrollments ON enrollments.student_id = progresses.student_id AND enrollments.course_id = progresses.course_id").
		Where("progresses.course_id = ? AND progresses.deleted_at IS NULL AND enrollments.deleted_at IS NULL", course.ID).
		Group("progress_lessons.lesson_id").
		Scan(&perLesson).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	completedByLesson := make(map[uint]int64, len(perLesson))
	for _, row := range perLesson {
		completedByLesson[row.LessonID] = row.Completed
	}

	lessonStats := make([]LessonStats, 0, len(lessons))
	for _, l := range lessons {
		lessonStats = append(lessonStats, LessonStats{
			LessonID:    l.ID,
			LessonTitle: l.Title,
			Completed:   completedByLesson[l.ID],
			Total:       stats.TotalEnrollments,
		})
	}

	// Прогресс по студентам
	var perStudent []struct {
		ProgressID uint
		Done       int64
	}
	if err := db.Table("progress_lessons").
		Select("progress_lessons.progress_id AS progress_id, COUNT(*) AS done").
		Joins("JOIN progresses ON progresses.id = progress_lessons.progress_id").
		Joins("JOIN enrollments ON enrollments.student_id = progresses.student_id AND enrollments.course_id = progresses.course_id").
		Where("progresses.course_id = ? AND progresses.deleted_at IS NULL AND enrollments.deleted_at IS NULL", course.ID).
		Group("progress_lessons.progress_id").
		Scan(&perStudent).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	if total := len(lessons); total > 0 && stats.TotalEnrollments > 0 {
		var sum float64
		for _, row := range perStudent {
			rate := float64(row.Done) / float64(total) * 100
			sum += rate
			if row.Done >= int64(total) {
				stats.Completed++
			}
		}
		stats.AvgCompletionRate = sum / float64(stats.TotalEnrollments)
	}

	trends, err := enrollmentTrends(db, course.ID, start, end)
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return utils.JSON(c, CourseAnalyticsResponse{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Stats:       stats,
		LessonStats: lessonStats,
		Enrollments: trends,
		Period: map[string]string{
			"startDate": start.Format(time.DateOnly),
			"endDate":   end.Format(time.DateOnly),
		},
	})
}

// enrollmentTrends возвращает динамику записей на курс по дням
func enrollmentTrends(db *gorm.DB, courseID uint, start, end time.Time) ([]EnrollmentTrend, error) {
	var enrolledAt []time.Time
	if err := db.Model(&models.Enrollment{}).
		Where("course_id = ? AND enrolled_at BETWEEN ? AND ?", courseID, start, end).
		Order("enrolled_at ASC").
		Pluck("enrolled_at", &enrolledAt).Error; err != nil {
		return nil, err
	}

	trends := []EnrollmentTrend{}
	for _, t := range enrolledAt {
		day := t.UTC().Format(time.DateOnly)
		if n := len(trends); n > 0 && trends[n-1].Date == day {
			trends[n-1].Enrollments++
			continue
		}
		trends = append(trends, EnrollmentTrend{Date: day, Enrollments: 1})
	}
	return trends, nil
}
