package certificates

import (
	"time"

	"certlife-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// latestOrder resolves "the most recent issuance" deterministically: newest
// issue instant first, then newest status change, then highest id.
const latestOrder = "issued_at DESC, status_set_at DESC, id DESC"

// Store reads and appends certificate history rows. Bind it to a transaction
// (Store{DB: tx}) when the caller needs transactional visibility. Status
// mutation stays out of here: that is the transition service's job.
type Store struct {
	DB *gorm.DB
}

// Create appends a new issuance row. Called only by the issue/reissue flows.
func (s *Store) Create(cert *models.Certificate) error {
	return s.DB.Create(cert).Error
}

// LatestForConsultant returns the most recently issued certificate, or nil.
func (s *Store) LatestForConsultant(consultantID uint) (*models.Certificate, error) {
	return s.first(s.DB.Where("consultant_id = ?", consultantID).Order(latestOrder))
}

// LatestForConsultantLocked is LatestForConsultant with a row-level lock, so
// two concurrent lifecycle jobs for the same consultant serialize on the row
// they are about to transition. SQLite has no FOR UPDATE; its writes are
// serialized by the database itself.
func (s *Store) LatestForConsultantLocked(consultantID uint) (*models.Certificate, error) {
	q := s.DB.Where("consultant_id = ?", consultantID).Order(latestOrder)
	if s.DB.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return s.first(q)
}

// ActiveForConsultant returns the certificate with status valid, or nil.
func (s *Store) ActiveForConsultant(consultantID uint) (*models.Certificate, error) {
	return s.first(
		s.DB.Where("consultant_id = ? AND status = ?", consultantID, models.CertificateValid).
			Order(latestOrder),
	)
}

// MatchingIssueTimestamp resolves a verification token back to its specific
// issuance row: the exact issued_at instant, not "whatever is current".
func (s *Store) MatchingIssueTimestamp(consultantID uint, issuedAt string) (*models.Certificate, error) {
	parsed, err := time.Parse(time.RFC3339Nano, issuedAt)
	if err != nil {
		return nil, nil
	}
	return s.first(
		s.DB.Where("consultant_id = ? AND issued_at = ?", consultantID, parsed).
			Order("id DESC"),
	)
}

func (s *Store) first(q *gorm.DB) (*models.Certificate, error) {
	var cert models.Certificate
	if err := q.First(&cert).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}
