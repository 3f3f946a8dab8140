package utils

import "github.com/gofiber/fiber/v2"

// SuccessResponse is the envelope for successful JSON responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for error responses. Error carries a
// machine-readable kind (e.g. COURSE_NOT_COMPLETE) so callers can branch
// without parsing the message.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func Fail(c *fiber.Ctx, status int, kind, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   kind,
		Message: message,
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}
