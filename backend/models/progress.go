package models

import "time"

type Progress struct {
	Model
	StudentID        uint     `json:"studentId" gorm:"not null;uniqueIndex:idx_progress_student_course"`
	CourseID         uint     `json:"courseId" gorm:"not null;uniqueIndex:idx_progress_student_course"`
	CompletedLessons []Lesson `json:"completedLessons" gorm:"many2many:progress_lessons;"`
}

func (Progress) TableName() string {
	return "progresses"
}

// ProgressLesson is the join row behind Progress.CompletedLessons. The
// composite primary key keeps the completed set free of duplicates.
type ProgressLesson struct {
	ProgressID uint `gorm:"primaryKey"`
	LessonID   uint `gorm:"primaryKey"`
	CreatedAt  time.Time
}

func (ProgressLesson) TableName() string {
	return "progress_lessons"
}
