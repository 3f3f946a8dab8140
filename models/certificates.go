package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate records an issued completion certificate. The unique index on
// (user_id, course_id) is what guarantees at most one per pair; the
// controller's pre-check is only a fast path.
type Certificate struct {
	gorm.Model
	UserID         uint   `gorm:"not null;uniqueIndex:idx_certificates_user_course"`
	CourseID       uint   `gorm:"not null;uniqueIndex:idx_certificates_user_course"`
	CertificateURL string
	ValidationCode string `gorm:"unique"`
	IssuedAt       time.Time
}

// LessonProgress marks a lesson as completed by a user. Existence of the
// row is the completion state; there is no partial progress.
type LessonProgress struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID uint `gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
}
