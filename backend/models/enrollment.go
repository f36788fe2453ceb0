package models

import "time"

type Enrollment struct {
	Model
	StudentID  uint      `json:"studentId" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID   uint      `json:"courseId" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Course     *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	EnrolledAt time.Time `json:"enrolledAt" gorm:"not null;index"`
}

// Payment records a gateway payment whose signature was verified.
type Payment struct {
	Model
	OrderID      string `json:"orderId" gorm:"type:varchar(100);uniqueIndex;not null"`
	PaymentID    string `json:"paymentId" gorm:"type:varchar(100);not null"`
	StudentID    uint   `json:"studentId" gorm:"index;not null"`
	CourseID     uint   `json:"courseId" gorm:"index;not null"`
	EnrollmentID uint   `json:"enrollmentId"`
}
