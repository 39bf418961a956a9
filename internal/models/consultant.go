package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consultant is the certificate-owning record. The application/review side of
// the consultant profile lives in the web app; this engine only reads contact
// details and maintains the current-certificate pointer fields.
type Consultant struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UUID                   uuid.UUID  `gorm:"column:uuid;type:uuid;uniqueIndex;not null" json:"uuid"`
	FullName               string     `gorm:"column:full_name;not null" json:"full_name"`
	Email                  string     `gorm:"column:email;uniqueIndex" json:"email"`
	PhoneNumber            string     `gorm:"column:phone_number" json:"phone_number"`
	RegistrationNumber     string     `gorm:"column:registration_number" json:"registration_number"`
	CertificateGeneratedAt *time.Time `gorm:"column:certificate_generated_at" json:"certificate_generated_at"`
	CertificateDocument    string     `gorm:"column:certificate_document" json:"certificate_document"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (Consultant) TableName() string {
	return "consultants"
}

func (c *Consultant) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}
