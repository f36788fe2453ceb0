package controllers

import (
	"errors"
	"fmt"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DiscussionController struct {
	DB *gorm.DB
}

func NewDiscussionController(db *gorm.DB) *DiscussionController {
	return &DiscussionController{DB: db}
}

// DiscussionRequest defines the request body for a comment or a reply
type DiscussionRequest struct {
	Content string `json:"content" validate:"required" example:"Will the live session be recorded?"`
}

// DiscussionThread is a top-level comment with its direct replies.
type DiscussionThread struct {
	models.Discussion
	Replies []models.Discussion `json:"replies"`
}

func selectAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role")
}

func author(user *models.User) *models.User {
	return &models.User{Model: models.Model{ID: user.ID}, Name: user.Name, Role: user.Role}
}

// AddComment godoc
// @Summary Start a thread
// @Tags discussions
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param input body DiscussionRequest true "Comment"
// @Success 201 {object} models.Discussion
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{courseId} [post]
func (dc *DiscussionController) AddComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input DiscussionRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	course, err := findCourse(c, dc.DB, courseID)
	if course == nil {
		return err
	}

	comment := models.Discussion{
		CourseID: course.ID,
		UserID:   user.ID,
		Content:  input.Content,
	}
	if err := dc.DB.WithContext(c.UserContext()).Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	comment.User = author(user)

	return utils.Created(c, comment)
}

// GetThreads godoc
// @Summary Course discussions
// @Description Top-level comments newest first, each with its replies oldest first
// @Tags discussions
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {array} DiscussionThread
// @Router /discussions/{courseId} [get]
func (dc *DiscussionController) GetThreads(c *fiber.Ctx) error {
	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var discussions []models.Discussion
	if err := dc.DB.WithContext(c.UserContext()).
		Preload("User", selectAuthor).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Replies.User", selectAuthor).
		Where("course_id = ? AND parent_id IS NULL", courseID).
		Order("created_at DESC, id DESC").
		Find(&discussions).Error; err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	threads := make([]DiscussionThread, 0, len(discussions))
	for _, d := range discussions {
		replies := d.Replies
		if replies == nil {
			replies = []models.Discussion{}
		}
		d.Replies = nil
		threads = append(threads, DiscussionThread{Discussion: d, Replies: replies})
	}

	return utils.JSON(c, threads)
}

// AddReply godoc
// @Summary Reply to a comment
// @Description Replies stay one level deep: a reply to a reply joins the top-level thread. The parent's author is notified unless they reply to themselves.
// @Tags discussions
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param parentId path int true "Parent discussion ID"
// @Param input body DiscussionRequest true "Reply"
// @Success 201 {object} models.Discussion
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{courseId}/reply/{parentId} [post]
func (dc *DiscussionController) AddReply(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, ok := utils.ParamID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	parentID, ok := utils.ParamID(c, "parentId")
	if !ok {
		return utils.BadRequest(c, "Invalid parent ID")
	}

	var input DiscussionRequest
	if ok, err := utils.ParseBody(c, &input); !ok {
		return err
	}

	db := dc.DB.WithContext(c.UserContext())

	var course models.Course
	var parent models.Discussion
	err := db.First(&course, courseID).Error
	if err == nil {
		err = db.Where("id = ? AND course_id = ?", parentID, course.ID).First(&parent).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course or parent discussion not found")
		}
		return utils.InternalServerError(c, err.Error())
	}

	threadID := parent.ID
	if parent.ParentID != nil {
		threadID = *parent.ParentID
	}

	reply := models.Discussion{
		CourseID: course.ID,
		UserID:   user.ID,
		Content:  input.Content,
		ParentID: &threadID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		if parent.UserID == user.ID {
			return nil
		}
		msg := fmt.Sprintf("%s replied to your comment on %s", user.Name, course.Title)
		_, err := services.Notify(c.UserContext(), tx, parent.UserID, msg, models.NotificationReply)
		return err
	})
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	reply.User = author(user)

	return utils.Created(c, reply)
}
