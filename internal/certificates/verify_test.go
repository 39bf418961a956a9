package certificates

import (
	"testing"
	"time"

	"certlife-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Success(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "verifier@example.com")
	issuedAt := time.Now().UTC().Add(-time.Hour)
	cert := createCertificate(t, db, consultant.ID, models.CertificateValid, issuedAt)

	codec := testCodec()
	token, err := codec.Build(consultant, cert)
	require.NoError(t, err)

	verifier := &Verifier{DB: db, Codec: codec}
	result, err := verifier.Verify(consultant.UUID.String(), token)
	require.NoError(t, err)
	assert.Equal(t, consultant.UUID, result.ConsultantUUID)
	assert.Equal(t, consultant.FullName, result.FullName)
	assert.True(t, result.IssuedOn.Equal(issuedAt))
}

func TestVerifier_UnknownOwnerStaysOpaque(t *testing.T) {
	db := setupCertDB(t)
	verifier := &Verifier{DB: db, Codec: testCodec()}

	_, err := verifier.Verify(uuid.New().String(), "some-token")
	assertTokenReason(t, err, ReasonInvalid)

	_, err = verifier.Verify("not-a-uuid", "some-token")
	assertTokenReason(t, err, ReasonInvalid)
}
