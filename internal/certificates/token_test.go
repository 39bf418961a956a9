package certificates

import (
	"testing"
	"time"

	"certlife-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *TokenCodec {
	return &TokenCodec{Secret: []byte("test-signing-secret")}
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "roundtrip@example.com")
	issuedAt := time.Now().UTC().Add(-time.Hour)
	cert := createCertificate(t, db, consultant.ID, models.CertificateValid, issuedAt)

	codec := testCodec()
	token, err := codec.Build(consultant, cert)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	meta, err := codec.Verify(db, token, consultant)
	require.NoError(t, err)
	assert.Equal(t, consultant.ID, meta.ConsultantID)
	assert.Equal(t, issuedAt.Format(time.RFC3339Nano), meta.IssuedAt)
	assert.True(t, meta.IssuedOn().Equal(issuedAt))
}

func TestBuild_RequiresActiveCertificate(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "inactive@example.com")
	revoked := createCertificate(t, db, consultant.ID, models.CertificateRevoked, time.Now().UTC())

	codec := testCodec()
	_, err := codec.Build(consultant, revoked)
	assert.ErrorIs(t, err, ErrTokenBuild)

	_, err = codec.Build(consultant, nil)
	assert.ErrorIs(t, err, ErrTokenBuild)
}

func TestVerify_EmptyAndTamperedToken(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "tamper@example.com")
	cert := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

	codec := testCodec()
	_, err := codec.Verify(db, "", consultant)
	assertTokenReason(t, err, ReasonInvalid)

	token, err := codec.Build(consultant, cert)
	require.NoError(t, err)
	_, err = codec.Verify(db, token+"x", consultant)
	assertTokenReason(t, err, ReasonInvalid)
}

func TestVerify_WrongConsultant(t *testing.T) {
	db := setupCertDB(t)
	owner := createConsultant(t, db, "owner@example.com")
	other := createConsultant(t, db, "other@example.com")
	cert := createCertificate(t, db, owner.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

	codec := testCodec()
	token, err := codec.Build(owner, cert)
	require.NoError(t, err)

	_, err = codec.Verify(db, token, other)
	assertTokenReason(t, err, ReasonInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "secret@example.com")
	cert := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

	token, err := testCodec().Build(consultant, cert)
	require.NoError(t, err)

	otherCodec := &TokenCodec{Secret: []byte("another-secret")}
	_, err = otherCodec.Verify(db, token, consultant)
	assertTokenReason(t, err, ReasonInvalid)
}

// A token stays bound to its issuance: once a later issuance exists, the old
// token fails even though its signature is still valid.
func TestVerify_TokenBindsToIssuance(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "supersede@example.com")
	first := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-2*time.Hour))

	codec := testCodec()
	oldToken, err := codec.Build(consultant, first)
	require.NoError(t, err)

	first.MarkStatus(models.CertificateReissued, "profile update", time.Now().UTC())
	require.NoError(t, db.Save(first).Error)
	second := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

	_, err = codec.Verify(db, oldToken, consultant)
	assertTokenReason(t, err, ReasonSuperseded)

	newToken, err := codec.Build(consultant, second)
	require.NoError(t, err)
	meta, err := codec.Verify(db, newToken, consultant)
	require.NoError(t, err)
	assert.Equal(t, second.IssuedAt.Format(time.RFC3339Nano), meta.IssuedAt)
}

func TestVerify_TerminalStatusReasons(t *testing.T) {
	cases := []struct {
		status models.CertificateStatus
		reason string
	}{
		{models.CertificateRevoked, ReasonRevoked},
		{models.CertificateExpired, ReasonExpired},
		{models.CertificateReissued, ReasonSuperseded},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			db := setupCertDB(t)
			consultant := createConsultant(t, db, string(tc.status)+"@example.com")
			cert := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

			codec := testCodec()
			token, err := codec.Build(consultant, cert)
			require.NoError(t, err)

			cert.MarkStatus(tc.status, "status change", time.Now().UTC())
			require.NoError(t, db.Save(cert).Error)

			_, err = codec.Verify(db, token, consultant)
			assertTokenReason(t, err, tc.reason)
		})
	}
}

func TestBuildVerificationURL(t *testing.T) {
	db := setupCertDB(t)
	consultant := createConsultant(t, db, "url@example.com")
	cert := createCertificate(t, db, consultant.ID, models.CertificateValid, time.Now().UTC().Add(-time.Hour))

	codec := testCodec()
	url, err := BuildVerificationURL("https://certs.example.com/", codec, consultant, cert)
	require.NoError(t, err)
	assert.Contains(t, url, "https://certs.example.com/verify/"+consultant.UUID.String())
	assert.Contains(t, url, "token=")
}

func assertTokenReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok, "expected *TokenError, got %T: %v", err, err)
	assert.Equal(t, reason, tokenErr.Reason)
}
