package models

import (
	"time"

	"gorm.io/gorm"
)

// Discussion is a course comment. ParentID is nil for a thread and points at
// the thread for a reply.
type Discussion struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CourseID  uint           `json:"courseId" gorm:"index;not null"`
	UserID    uint           `json:"userId" gorm:"index;not null"`
	User      *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Content   string         `json:"content" gorm:"not null"`
	ParentID  *uint          `json:"parent" gorm:"index"`
	Replies   []Discussion   `json:"replies,omitempty" gorm:"foreignKey:ParentID"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
