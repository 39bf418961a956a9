package documents

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"certlife-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	consultant := &models.Consultant{
		ID:                 7,
		FullName:           "Render Test",
		RegistrationNumber: "REG-007",
	}

	data, err := Renderer{}.Render(consultant, time.Now().UTC(), "https://certs.example.com/verify/abc?token=xyz", "Staff Member")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "N/A", FormatDate(time.Time{}))
	assert.Equal(t, "02 March 2026", FormatDate(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)))
}

func TestDiskStorage_WriteAndRemove(t *testing.T) {
	storage := &DiskStorage{Dir: t.TempDir()}

	path, err := storage.Write(12, []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "approval-certificate-12.pdf", filepath.Base(path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, storage.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again or removing nothing is fine.
	require.NoError(t, storage.Remove(path))
	require.NoError(t, storage.Remove(""))
}
