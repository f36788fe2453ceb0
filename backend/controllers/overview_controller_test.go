package controllers_test

import (
	"context"
	"fmt"
	"testing"

	"coursehub/backend/controllers"
	"coursehub/backend/models"
	"coursehub/backend/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCourses(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.SeedUser(t, env.DB, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, env.DB, "bo", models.RoleStudent)
	cy := testutil.SeedUser(t, env.DB, "cy", models.RoleStudent)

	goCourse := testutil.SeedCourse(t, env.DB, ana, "Go Basics", 500)
	rust := testutil.SeedCourse(t, env.DB, ana, "Rust Basics", 900)
	testutil.SeedCourse(t, env.DB, ana, "Cooking", 100)
	testutil.SeedLesson(t, env.DB, rust, "Ownership")

	for _, student := range []*models.User{bo, cy} {
		_, _, err := env.Services.Enroller.Enroll(context.Background(), student, rust, nil)
		require.NoError(t, err)
	}
	_, _, err := env.Services.Enroller.Enroll(context.Background(), bo, goCourse, nil)
	require.NoError(t, err)

	search := func(query string) []controllers.CourseSummary {
		resp := env.Do(t, "GET", "/api/courses/search"+query, nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var out []controllers.CourseSummary
		testutil.Decode(t, resp, &out)
		return out
	}

	found := search("?search=BASICS")
	require.Len(t, found, 2)
	assert.Equal(t, "Rust Basics", found[0].Title)
	assert.EqualValues(t, 2, found[0].Enrollments)
	assert.EqualValues(t, 1, found[0].Lessons)
	require.NotNil(t, found[0].Instructor)
	assert.Equal(t, "ana", found[0].Instructor.Name)
	assert.Equal(t, "Go Basics", found[1].Title)

	cheap := search("?maxPrice=500&sort=price_asc")
	require.Len(t, cheap, 2)
	assert.Equal(t, "Cooking", cheap[0].Title)
	assert.Equal(t, "Go Basics", cheap[1].Title)

	assert.Empty(t, search("?search=haskell"))

	resp := env.Do(t, "GET", "/api/courses/search?sort=rating", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = env.Do(t, "GET", "/api/courses/search?maxPrice=cheap", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCourseAnalytics(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.SeedUser(t, env.DB, "ana", models.RoleInstructor)
	cy := testutil.SeedUser(t, env.DB, "cy", models.RoleInstructor)
	bo := testutil.SeedUser(t, env.DB, "bo", models.RoleStudent)
	dee := testutil.SeedUser(t, env.DB, "dee", models.RoleStudent)
	course := testutil.SeedCourse(t, env.DB, ana, "Go", 500)
	intro := testutil.SeedLesson(t, env.DB, course, "Intro")
	channels := testutil.SeedLesson(t, env.DB, course, "Channels")

	for _, student := range []*models.User{bo, dee} {
		_, _, err := env.Services.Enroller.Enroll(context.Background(), student, course, nil)
		require.NoError(t, err)
	}
	for _, lesson := range []*models.Lesson{intro, channels} {
		resp := env.Do(t, "POST", fmt.Sprintf("/api/progress/complete/%d", lesson.ID), nil, testutil.Token(t, env.Cfg, bo))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := env.Do(t, "POST", fmt.Sprintf("/api/progress/complete/%d", intro.ID), nil, testutil.Token(t, env.Cfg, dee))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// progress from someone who never enrolled is left out
	eve := testutil.SeedUser(t, env.DB, "eve", models.RoleStudent)
	for _, lesson := range []*models.Lesson{intro, channels} {
		resp = env.Do(t, "POST", fmt.Sprintf("/api/progress/complete/%d", lesson.ID), nil, testutil.Token(t, env.Cfg, eve))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	path := fmt.Sprintf("/api/courses/%d/analytics", course.ID)
	resp = env.Do(t, "GET", path, nil, testutil.Token(t, env.Cfg, ana))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var analytics controllers.CourseAnalyticsResponse
	testutil.Decode(t, resp, &analytics)
	assert.Equal(t, "Go", analytics.CourseTitle)
	assert.EqualValues(t, 2, analytics.Stats.TotalEnrollments)
	assert.EqualValues(t, 0, analytics.Stats.PaidEnrollments)
	assert.EqualValues(t, 1, analytics.Stats.Completed)
	assert.InDelta(t, 75.0, analytics.Stats.AvgCompletionRate, 0.001)

	require.Len(t, analytics.LessonStats, 2)
	assert.Equal(t, intro.ID, analytics.LessonStats[0].LessonID)
	assert.EqualValues(t, 2, analytics.LessonStats[0].Completed)
	assert.EqualValues(t, 1, analytics.LessonStats[1].Completed)
	assert.EqualValues(t, 2, analytics.LessonStats[1].Total)

	require.Len(t, analytics.Enrollments, 1)
	assert.Equal(t, 2, analytics.Enrollments[0].Enrollments)

	resp = env.Do(t, "GET", path, nil, testutil.Token(t, env.Cfg, cy))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.Do(t, "GET", path+"?start_date=yesterday", nil, testutil.Token(t, env.Cfg, ana))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.Do(t, "GET", path+"?start_date=2000-01-01&end_date=2000-01-31", nil, testutil.Token(t, env.Cfg, ana))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	testutil.Decode(t, resp, &analytics)
	assert.Empty(t, analytics.Enrollments)
	assert.Equal(t, "2000-01-31", analytics.Period["endDate"])
}

func TestCourseAnalyticsCountsEnrolledStudentsOnly(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.SeedUser(t, env.DB, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, env.DB, "bo", models.RoleStudent)
	course := testutil.SeedCourse(t, env.DB, ana, "Go", 500)
	lesson := testutil.SeedLesson(t, env.DB, course, "Intro")

	_, _, err := env.Services.Enroller.Enroll(context.Background(), bo, course, nil)
	require.NoError(t, err)

	for _, name := range []string{"cy", "dee", "eve"} {
		outsider := testutil.SeedUser(t, env.DB, name, models.RoleStudent)
		resp := env.Do(t, "POST", fmt.Sprintf("/api/progress/complete/%d", lesson.ID), nil, testutil.Token(t, env.Cfg, outsider))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := env.Do(t, "GET", fmt.Sprintf("/api/courses/%d/analytics", course.ID), nil, testutil.Token(t, env.Cfg, ana))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var analytics controllers.CourseAnalyticsResponse
	testutil.Decode(t, resp, &analytics)
	assert.EqualValues(t, 1, analytics.Stats.TotalEnrollments)
	assert.EqualValues(t, 0, analytics.Stats.Completed)
	assert.InDelta(t, 0.0, analytics.Stats.AvgCompletionRate, 0.001)
	require.Len(t, analytics.LessonStats, 1)
	assert.EqualValues(t, 0, analytics.LessonStats[0].Completed)
	assert.EqualValues(t, 1, analytics.LessonStats[0].Total)
}
