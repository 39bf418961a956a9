package certificates

import (
	"time"

	"certlife-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationResult is the issuance metadata returned for a successfully
// verified certificate. Only the consultant's own public details travel back.
type VerificationResult struct {
	ConsultantUUID     uuid.UUID `json:"consultant_uuid"`
	FullName           string    `json:"full_name"`
	RegistrationNumber string    `json:"registration_number"`
	IssuedOn           time.Time `json:"issued_on"`
}

// Verifier is the public verification entry point: it resolves the
// certificate owner by UUID and validates the presented token.
type Verifier struct {
	DB    *gorm.DB
	Codec *TokenCodec
}

// Verify resolves the consultant behind certificateUUID and validates the
// token against their certificate history. An unknown UUID deliberately maps
// to the generic invalid reason so the endpoint leaks nothing.
func (v *Verifier) Verify(certificateUUID, token string) (*VerificationResult, error) {
	owner, err := uuid.Parse(certificateUUID)
	if err != nil {
		return nil, tokenErr(ReasonInvalid)
	}

	var consultant models.Consultant
	if err := v.DB.Where("uuid = ?", owner).First(&consultant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, tokenErr(ReasonInvalid)
		}
		return nil, err
	}

	meta, err := v.Codec.Verify(v.DB, token, &consultant)
	if err != nil {
		return nil, err
	}

	return &VerificationResult{
		ConsultantUUID:     consultant.UUID,
		FullName:           consultant.FullName,
		RegistrationNumber: consultant.RegistrationNumber,
		IssuedOn:           meta.IssuedOn(),
	}, nil
}
