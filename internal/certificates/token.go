package certificates

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"certlife-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// tokenAudience namespaces certificate tokens so a signature produced for any
// other purpose can never validate here.
const tokenAudience = "certlife.certificates.token"

// TokenMetadata is the payload decoded from a verified token.
type TokenMetadata struct {
	ConsultantID uint
	IssuedAt     string
}

// IssuedOn returns the issuance instant, or the zero time when the serialized
// value is unreadable (guarded by the token issuer).
func (m TokenMetadata) IssuedOn() time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, m.IssuedAt)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

type tokenClaims struct {
	ConsultantID uint   `json:"consultant_id"`
	CertIssuedAt string `json:"issued_at"`
	jwt.RegisteredClaims
}

// TokenCodec signs and validates verification tokens binding a consultant to
// one specific certificate issuance. Tokens are HS256 JWTs; validity is
// host-state-dependent: a mathematically valid signature still fails once the
// issuance it names has been superseded.
type TokenCodec struct {
	Secret []byte
}

// Build signs a token for the given certificate, which must be the
// consultant's and currently valid with a known issue instant.
func (c *TokenCodec) Build(consultant *models.Consultant, cert *models.Certificate) (string, error) {
	if consultant == nil || consultant.ID == 0 {
		return "", fmt.Errorf("consultant must be saved before issuing a certificate token")
	}
	if cert == nil || cert.IssuedAt == nil || !cert.IsActive() {
		return "", ErrTokenBuild
	}

	claims := tokenClaims{
		ConsultantID: consultant.ID,
		CertIssuedAt: cert.IssuedAt.UTC().Format(time.RFC3339Nano),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: jwt.ClaimStrings{tokenAudience},
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// BuildForConsultant resolves the consultant's active certificate and signs a
// token for it. Fails with ErrTokenBuild when no valid certificate exists.
func (c *TokenCodec) BuildForConsultant(db *gorm.DB, consultant *models.Consultant) (string, error) {
	store := &Store{DB: db}
	cert, err := store.ActiveForConsultant(consultant.ID)
	if err != nil {
		return "", err
	}
	return c.Build(consultant, cert)
}

// Verify validates the token against the consultant's certificate history and
// returns the decoded metadata. Failures are *TokenError values carrying the
// exact reason shown to the person scanning the QR code.
func (c *TokenCodec) Verify(db *gorm.DB, token string, consultant *models.Consultant) (*TokenMetadata, error) {
	if strings.TrimSpace(token) == "" {
		return nil, tokenErr(ReasonInvalid)
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.Secret, nil
	}, jwt.WithAudience(tokenAudience))
	if err != nil || !parsed.Valid {
		return nil, tokenErr(ReasonInvalid)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.CertIssuedAt == "" {
		return nil, tokenErr(ReasonInvalid)
	}
	if claims.ConsultantID != consultant.ID {
		return nil, tokenErr(ReasonInvalid)
	}

	store := &Store{DB: db}
	cert, err := store.MatchingIssueTimestamp(consultant.ID, claims.CertIssuedAt)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		latest, err := store.LatestForConsultant(consultant.ID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			// Never formally certified; the token predates any history row.
			return nil, tokenErr(ReasonNotActive)
		}
		return nil, tokenErr(ReasonSuperseded)
	}

	switch cert.Status {
	case models.CertificateRevoked:
		return nil, tokenErr(ReasonRevoked)
	case models.CertificateExpired:
		return nil, tokenErr(ReasonExpired)
	case models.CertificateReissued:
		return nil, tokenErr(ReasonSuperseded)
	}
	if cert.IssuedAt == nil || !cert.IsActive() {
		return nil, tokenErr(ReasonNotActive)
	}

	return &TokenMetadata{ConsultantID: consultant.ID, IssuedAt: claims.CertIssuedAt}, nil
}

// BuildVerificationURL returns the URL embedded in the certificate QR code.
func BuildVerificationURL(baseURL string, codec *TokenCodec, consultant *models.Consultant, cert *models.Certificate) (string, error) {
	token, err := codec.Build(consultant, cert)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("/verify/%s", consultant.UUID)
	query := url.Values{"token": []string{token}}.Encode()
	base := strings.TrimRight(baseURL, "/")
	return base + path + "?" + query, nil
}
