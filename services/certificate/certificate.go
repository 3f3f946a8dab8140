// Package certificate implements the completion gate and certificate
// composer: it decides whether a user finished every lesson of a course
// and, if so, renders, stores and records a completion certificate.
package certificate

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backend/models"
)

// FallbackStudentName is printed when the user has no display name. A
// missing profile name never blocks generation.
const FallbackStudentName = "Student"

var (
	ErrInvalidCourseStructure = errors.New("course has no modules or lessons")
	ErrCertificateNotEnabled  = errors.New("certificates are not enabled for this course")
	ErrTemplateMissing        = errors.New("course has no certificate template")
	ErrStorageWrite           = errors.New("certificate storage write failed")
	ErrRecordInsert           = errors.New("certificate record insert failed")
)

// NotCompleteError reports how far along the user is. It is an expected
// outcome, not a system fault.
type NotCompleteError struct {
	Completed int64
	Total     int64
}

func (e *NotCompleteError) Error() string {
	return fmt.Sprintf("course not complete: %d of %d lessons done", e.Completed, e.Total)
}

// IssueResult is what callers need to hand the certificate to the user.
type IssueResult struct {
	CertificateURL string
	ValidationCode string
	AlreadyIssued  bool
}

type Issuer struct {
	DB     *gorm.DB
	Store  Store
	Client *resty.Client
}

func NewIssuer(db *gorm.DB, store Store, timeout time.Duration) *Issuer {
	return &Issuer{
		DB:     db,
		Store:  store,
		Client: resty.New().SetTimeout(timeout),
	}
}

// Issue runs the full pipeline: idempotency fast path, structural check,
// completion aggregation, configuration check, composition, storage write
// and record upsert, strictly in that order. The storage write happens
// before the insert so a failure never leaves a record pointing at a
// missing document.
//
// A forced call regenerates the document and refreshes the stored URL and
// issue date but keeps the original validation code: codes are published
// on issued certificates and must survive regeneration.
func (s *Issuer) Issue(userID, courseID uint, force bool) (*IssueResult, error) {
	var existing models.Certificate
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&existing).Error
	if err == nil && !force {
		return &IssueResult{
			CertificateURL: existing.CertificateURL,
			ValidationCode: existing.ValidationCode,
			AlreadyIssued:  true,
		}, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		return nil, err
	}

	var lessonIDs []uint
	if err := s.courseLessonIDs(courseID, &lessonIDs); err != nil {
		return nil, err
	}

	completed, err := s.completedCount(userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	total := int64(len(lessonIDs))
	// >= rather than == guards against duplicate or stale progress rows.
	if completed < total {
		return nil, &NotCompleteError{Completed: completed, Total: total}
	}

	if !course.CertificateEnabled {
		return nil, ErrCertificateNotEnabled
	}
	if course.CertificateTemplate == "" {
		return nil, ErrTemplateMissing
	}

	name := s.studentName(userID)

	template, contentType, err := s.fetchTemplate(course.CertificateTemplate)
	if err != nil {
		return nil, err
	}

	document, err := Render(RenderInput{
		StudentName:    name,
		CompletionDate: time.Now(),
		Template:       template,
		ContentType:    contentType,
		Layout:         course.CertificateLayout(),
	})
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("certificates/%d/%d.pdf", userID, courseID)
	url, err := s.Store.Put(path, document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	return s.saveRecord(userID, courseID, url)
}

// courseLessonIDs resolves the course's lessons through its modules. A
// course with zero modules or zero lessons has no gradable content.
func (s *Issuer) courseLessonIDs(courseID uint, lessonIDs *[]uint) error {
	var moduleIDs []uint
	if err := s.DB.Model(&models.Module{}).
		Where("course_id = ?", courseID).
		Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	if len(moduleIDs) == 0 {
		return ErrInvalidCourseStructure
	}

	if err := s.DB.Model(&models.Lesson{}).
		Where("module_id IN ?", moduleIDs).
		Pluck("id", lessonIDs).Error; err != nil {
		return err
	}
	if len(*lessonIDs) == 0 {
		return ErrInvalidCourseStructure
	}

	return nil
}

func (s *Issuer) completedCount(userID uint, lessonIDs []uint) (int64, error) {
	var completed int64
	err := s.DB.Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Distinct("lesson_id").
		Count(&completed).Error
	return completed, err
}

func (s *Issuer) studentName(userID uint) string {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return FallbackStudentName
	}
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return FallbackStudentName
}

func (s *Issuer) fetchTemplate(url string) ([]byte, string, error) {
	resp, err := s.Client.R().Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch certificate template: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("fetch certificate template: status %d", resp.StatusCode())
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// saveRecord inserts the certificate row, or on a concurrent or forced
// duplicate refreshes the document URL and issue date in place. The unique
// index on (user_id, course_id) makes this the real idempotency guarantee;
// the pre-check in Issue only skips composition.
func (s *Issuer) saveRecord(userID, courseID uint, url string) (*IssueResult, error) {
	now := time.Now()
	cert := models.Certificate{
		UserID:         userID,
		CourseID:       courseID,
		CertificateURL: url,
		ValidationCode: NewValidationCode(),
		IssuedAt:       now,
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"certificate_url": url,
			"issued_at":       now,
		}),
	}).Create(&cert).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordInsert, err)
	}

	// Reload so a conflicting insert reports the surviving validation code.
	var saved models.Certificate
	if err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&saved).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordInsert, err)
	}

	return &IssueResult{
		CertificateURL: saved.CertificateURL,
		ValidationCode: saved.ValidationCode,
	}, nil
}

// NewValidationCode returns a short human-checkable token, e.g.
// CERT-3F0A91BC.
func NewValidationCode() string {
	id := uuid.New()
	return "CERT-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}
