package services

import (
	"context"
	"fmt"
	"time"

	"coursehub/backend/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultEmailTimeout = 10 * time.Second

// Enroller commits enrollments. The (student, course) unique index makes a
// second enrollment for the same pair a no-op instead of a duplicate row.
type Enroller struct {
	DB           *gorm.DB
	Mailer       Mailer
	Logger       *zap.Logger
	FrontendURL  string
	EmailTimeout time.Duration
}

func NewEnroller(db *gorm.DB, mailer Mailer, logger *zap.Logger, frontendURL string) *Enroller {
	return &Enroller{
		DB:          db,
		Mailer:      mailer,
		Logger:      logger.With(zap.String("service", "Enroller")),
		FrontendURL: frontendURL,
	}
}

// Enroll records that student has access to course. created is false when
// the student was already enrolled; the existing enrollment is returned then.
// A non-nil payment is stored alongside the enrollment, once per order id.
func (e *Enroller) Enroll(ctx context.Context, student *models.User, course *models.Course, payment *models.Payment) (enrollment *models.Enrollment, created bool, err error) {
	enrollment = &models.Enrollment{
		StudentID:  student.ID,
		CourseID:   course.ID,
		EnrolledAt: time.Now().UTC(),
	}

	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(enrollment)
		if res.Error != nil {
			return errors.Wrap(res.Error, "insert enrollment")
		}

		if res.RowsAffected == 0 {
			*enrollment = models.Enrollment{}
			if err := tx.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(enrollment).Error; err != nil {
				return errors.Wrap(err, "load existing enrollment")
			}
		} else {
			created = true
			msg := fmt.Sprintf("🎉 You successfully enrolled in %s", course.Title)
			if _, err := Notify(ctx, tx, student.ID, msg, models.NotificationEnrollment); err != nil {
				return err
			}
		}

		if payment != nil {
			payment.StudentID = student.ID
			payment.CourseID = course.ID
			payment.EnrollmentID = enrollment.ID
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(payment).Error; err != nil {
				return errors.Wrap(err, "record payment")
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		e.sendConfirmation(ctx, student, course)
	}
	return enrollment, created, nil
}

// sendConfirmation is best effort: a failed email never undoes an enrollment.
func (e *Enroller) sendConfirmation(ctx context.Context, student *models.User, course *models.Course) {
	if e.Mailer == nil {
		return
	}
	log := e.Logger.With(zap.Uint("student_id", student.ID), zap.Uint("course_id", course.ID))

	link := fmt.Sprintf("%s/courses/%d", e.FrontendURL, course.ID)
	msg, err := enrollmentEmail(student.Name, student.Email, course.Title, link)
	if err != nil {
		log.Warn("enrollment email not rendered", zap.Error(err))
		return
	}

	timeout := e.EmailTimeout
	if timeout <= 0 {
		timeout = defaultEmailTimeout
	}
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := e.Mailer.Send(mailCtx, msg); err != nil {
		log.Warn("enrollment email failed", zap.Error(err))
	}
}
