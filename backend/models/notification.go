package models

import "time"

const (
	NotificationInfo       = "info"
	NotificationEnrollment = "enrollment"
	NotificationReply      = "reply"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null;default:info"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}
