package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"backend/config"
	"backend/controllers"
	"backend/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Certificate routes
	certificatesController := controllers.NewCertificatesController(db, cfg, logger)
	app.Post("/api/certificates/issue", authMiddleware, certificatesController.IssueCertificate)
	app.Get("/api/certificates", authMiddleware, certificatesController.GetUserCertificates)
	app.Get("/api/certificates/verify/:code", certificatesController.VerifyCertificate)

	// Video tooling routes (admin authoring)
	durationController := controllers.NewDurationController(cfg, logger)
	app.Post("/api/videos/duration", authMiddleware, adminMiddleware, durationController.ResolveDuration)
}
