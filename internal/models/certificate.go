package models

import (
	"fmt"
	"time"
)

// CertificateStatus enumerates the certificate lifecycle states. Valid is the
// only active state; the other three are terminal.
type CertificateStatus string

const (
	CertificateValid    CertificateStatus = "valid"
	CertificateRevoked  CertificateStatus = "revoked"
	CertificateExpired  CertificateStatus = "expired"
	CertificateReissued CertificateStatus = "reissued"
)

// Terminal reports whether the status never returns to valid.
func (s CertificateStatus) Terminal() bool {
	return s == CertificateRevoked || s == CertificateExpired || s == CertificateReissued
}

// Certificate is one issuance event in a consultant's certificate history.
// Rows are append-only: a consultant accumulates one row per issuance and no
// row is ever deleted. Status is mutated only through the transition service.
type Certificate struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ConsultantID uint              `gorm:"column:consultant_id;index;not null" json:"consultant_id"`
	Status       CertificateStatus `gorm:"column:status;type:varchar(16);index;default:'valid'" json:"status"`
	IssuedAt     *time.Time        `gorm:"column:issued_at" json:"issued_at"`
	StatusSetAt  time.Time         `gorm:"column:status_set_at" json:"status_set_at"`
	ValidAt      *time.Time        `gorm:"column:valid_at" json:"valid_at"`
	RevokedAt    *time.Time        `gorm:"column:revoked_at" json:"revoked_at"`
	ExpiredAt    *time.Time        `gorm:"column:expired_at" json:"expired_at"`
	ReissuedAt   *time.Time        `gorm:"column:reissued_at" json:"reissued_at"`
	StatusReason string            `gorm:"column:status_reason" json:"status_reason"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) String() string {
	return fmt.Sprintf("Certificate<%d:%s>", c.ConsultantID, c.Status)
}

// IsActive reports whether the certificate currently verifies.
func (c *Certificate) IsActive() bool {
	return c.Status == CertificateValid
}

// MarkStatus applies a new status and the timestamp bookkeeping that goes with
// it. IssuedAt is deliberately untouched: it is the immutable identity of the
// issuance. The caller persists the row.
func (c *Certificate) MarkStatus(status CertificateStatus, reason string, at time.Time) {
	c.Status = status
	c.StatusSetAt = at

	switch status {
	case CertificateValid:
		if c.ValidAt == nil {
			c.ValidAt = &at
		}
		c.RevokedAt = nil
		c.ExpiredAt = nil
	case CertificateRevoked:
		c.RevokedAt = &at
	case CertificateExpired:
		c.ExpiredAt = &at
	case CertificateReissued:
		c.ReissuedAt = &at
	}

	c.StatusReason = reason
}
