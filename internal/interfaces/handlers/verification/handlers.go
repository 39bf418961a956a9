package verification

import (
	"errors"

	"certlife-backend/internal/certificates"
	"certlife-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the public QR verification endpoint.
type Handlers struct {
	Verifier *certificates.Verifier
}

// Verify handles GET /verify/:certificate_uuid?token=...
// Failure reasons are display strings; nothing internal leaks past the
// certificate's own UUID.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	certificateUUID := c.Params("certificate_uuid")
	token := c.Query("token")

	result, err := h.Verifier.Verify(certificateUUID, token)
	if err != nil {
		var tokenErr *certificates.TokenError
		if errors.As(err, &tokenErr) {
			return response.Error(c, tokenErr.Reason, fiber.StatusBadRequest, nil)
		}
		return err
	}

	return response.Success(c, "Certificate verified", result)
}
