package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Progress{}, "CompletedLessons", &ProgressLesson{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&User{},
		&Course{},
		&Lesson{},
		&Enrollment{},
		&Payment{},
		&Progress{},
		&ProgressLesson{},
		&Discussion{},
		&Notification{},
	)
}
