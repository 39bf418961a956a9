// Package consultants resolves consultant references. Lifecycle jobs accept
// either a primary key or an email address; the Ref type makes that choice
// explicit instead of sniffing the payload at use sites.
package consultants

import (
	"errors"
	"strconv"
	"strings"

	"certlife-backend/internal/models"
	"certlife-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("consultant not found")
	ErrUnresolvable = errors.New("consultant identifier is neither an id nor an email")
)

type refKind int

const (
	refByID refKind = iota
	refByEmail
)

// Ref is a tagged consultant reference: ById or ByEmail.
type Ref struct {
	kind  refKind
	id    uint
	email string
}

func ByID(id uint) Ref {
	return Ref{kind: refByID, id: id}
}

func ByEmail(email string) Ref {
	return Ref{kind: refByEmail, email: email}
}

// String returns the wire form used in job payloads.
func (r Ref) String() string {
	if r.kind == refByEmail {
		return r.email
	}
	return strconv.FormatUint(uint64(r.id), 10)
}

// ParseRef accepts the convenience forms: all digits means primary key,
// anything shaped like an email address means email lookup.
func ParseRef(identifier string) (Ref, error) {
	candidate := strings.TrimSpace(identifier)
	if candidate == "" {
		return Ref{}, ErrUnresolvable
	}
	if id, err := strconv.ParseUint(candidate, 10, 64); err == nil {
		return ByID(uint(id)), nil
	}
	if validation.IsValidEmail(candidate) {
		return ByEmail(candidate), nil
	}
	return Ref{}, ErrUnresolvable
}

// Resolve loads the consultant row the reference points at.
func (r Ref) Resolve(db *gorm.DB) (*models.Consultant, error) {
	var consultant models.Consultant
	q := db
	switch r.kind {
	case refByID:
		q = q.Where("id = ?", r.id)
	case refByEmail:
		q = q.Where("LOWER(email) = LOWER(?)", r.email)
	}
	if err := q.First(&consultant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &consultant, nil
}
