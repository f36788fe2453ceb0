package models

import (
	"time"

	"gorm.io/gorm"
)

// Model mirrors gorm.Model with JSON names the frontend expects.
type Model struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
