package models

import "time"

type Course struct {
	Model
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"not null"`
	Price        float64    `json:"price" gorm:"not null;default:0;check:price >= 0"`
	InstructorID uint       `json:"instructorId" gorm:"index;not null"`
	Instructor   *User      `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	LiveLink     string     `json:"liveLink"`
	LiveDate     *time.Time `json:"liveDate,omitempty"`
}

type Lesson struct {
	Model
	CourseID uint   `json:"courseId" gorm:"index;not null"`
	Title    string `json:"title" gorm:"not null"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl"`
}
