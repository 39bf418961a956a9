package middleware

import (
	"errors"

	"certlife-backend/internal/certificates"
	"certlife-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Verification failures surface
// their display reason with a 400; everything else stays opaque.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var tokenErr *certificates.TokenError
	if errors.As(err, &tokenErr) {
		code = fiber.StatusBadRequest
		message = tokenErr.Reason
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, message, code, nil)
}
