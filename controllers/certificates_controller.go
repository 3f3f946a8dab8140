package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"backend/config"
	"backend/models"
	"backend/services/certificate"
	"backend/utils"
)

type CertificatesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Issuer *certificate.Issuer
	Logger *log.Logger
}

func NewCertificatesController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *CertificatesController {
	store := certificate.NewDiskStore(cfg.StorageDir, cfg.PublicBaseURL)
	return &CertificatesController{
		DB:     db,
		Cfg:    cfg,
		Issuer: certificate.NewIssuer(db, store, cfg.HTTPTimeout),
		Logger: logger,
	}
}

// IssueCertificate runs the completion gate for the calling user and, on
// success, returns the certificate document URL and validation code.
// Repeated calls are idempotent unless force is set.
func (cc *CertificatesController) IssueCertificate(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	}

	var input struct {
		CourseID uint `json:"course_id"`
		Force    bool `json:"force"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "BAD_REQUEST", "Cannot parse JSON")
	}
	if input.CourseID == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "BAD_REQUEST", "course_id is required")
	}

	result, err := cc.Issuer.Issue(userID, input.CourseID, input.Force)
	if err != nil {
		return cc.issueError(c, userID, input.CourseID, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"certificate_url": result.CertificateURL,
		"validation_code": result.ValidationCode,
		"already_issued":  result.AlreadyIssued,
	})
}

// issueError maps pipeline failures onto the response taxonomy. An
// incomplete course is an expected outcome and is never logged; everything
// else is a fault worth diagnosing.
func (cc *CertificatesController) issueError(c *fiber.Ctx, userID, courseID uint, err error) error {
	var notComplete *certificate.NotCompleteError

	switch {
	case errors.As(err, &notComplete):
		return utils.Fail(c, fiber.StatusConflict, "COURSE_NOT_COMPLETE",
			"Course is not yet complete", fiber.Map{
				"completed": notComplete.Completed,
				"total":     notComplete.Total,
			})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "NOT_FOUND", "Course not found")
	case errors.Is(err, certificate.ErrInvalidCourseStructure):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "INVALID_COURSE_STRUCTURE",
			"Course has no modules or lessons")
	case errors.Is(err, certificate.ErrCertificateNotEnabled):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusForbidden, "CERTIFICATE_NOT_ENABLED",
			"Certificates are not enabled for this course")
	case errors.Is(err, certificate.ErrTemplateMissing):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "TEMPLATE_MISSING",
			"Course has no certificate template configured")
	case errors.Is(err, certificate.ErrUnsupportedTemplateFormat):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "UNSUPPORTED_TEMPLATE_FORMAT",
			"Certificate template must be a PNG or JPEG image")
	case errors.Is(err, certificate.ErrStorageWrite):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, "STORAGE_WRITE_FAILED",
			"Could not store the certificate document")
	case errors.Is(err, certificate.ErrRecordInsert):
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, "RECORD_INSERT_FAILED",
			"Could not record the certificate")
	default:
		cc.Logger.Printf("issue certificate: user=%d course=%d: %v", userID, courseID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR",
			"Could not issue certificate")
	}
}

// GetUserCertificates lists the caller's certificates with course titles.
func (cc *CertificatesController) GetUserCertificates(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	}

	var certificates []models.Certificate
	if err := cc.DB.Where("user_id = ?", userID).
		Order("issued_at desc").
		Find(&certificates).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR",
			"Could not query database")
	}

	result := make([]fiber.Map, 0, len(certificates))
	for _, cert := range certificates {
		var course models.Course
		cc.DB.First(&course, cert.CourseID)

		result = append(result, fiber.Map{
			"course_id":       cert.CourseID,
			"course_title":    course.Title,
			"certificate_url": cert.CertificateURL,
			"validation_code": cert.ValidationCode,
			"issued_at":       cert.IssuedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// VerifyCertificate is the public lookup behind the validation code printed
// on certificates.
func (cc *CertificatesController) VerifyCertificate(c *fiber.Ctx) error {
	code := c.Params("code")

	var cert models.Certificate
	if err := cc.DB.Where("validation_code = ?", code).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, "NOT_FOUND", "Certificate not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR",
			"Could not query database")
	}

	var user models.User
	cc.DB.First(&user, cert.UserID)
	var course models.Course
	cc.DB.First(&course, cert.CourseID)

	student := user.Name
	if student == "" {
		student = certificate.FallbackStudentName
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"student":         student,
		"course_title":    course.Title,
		"certificate_url": cert.CertificateURL,
		"validation_code": cert.ValidationCode,
		"issued_at":       cert.IssuedAt,
	})
}
