package utils

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// InitLogger returns the application logger. Output defaults to stdout.
func InitLogger(output ...*os.File) *log.Logger {
	out := os.Stdout
	if len(output) > 0 && output[0] != nil {
		out = output[0]
	}
	return log.New(out, "[Course Platform] ", log.LstdFlags|log.LUTC)
}

// LoggingMiddleware logs every request with status, latency and client IP.
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Printf("%s %s %s %d %s",
			c.IP(),
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
		)

		return err
	}
}
