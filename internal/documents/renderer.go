// Package documents renders and stores the consultant approval certificate
// document: a single-page PDF carrying the issuance details and a QR code
// that resolves to the public verification URL.
package documents

import (
	"bytes"
	"fmt"
	"time"

	"certlife-backend/internal/models"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Page layout in millimeters (A4 portrait).
const (
	marginX  = 20.0
	titleY   = 40.0
	qrSizeMM = 45.0
	qrPixels = 420
)

type Renderer struct{}

// Render produces the certificate PDF bytes. generatedBy is the display name
// of the staff member who triggered the issuance; empty omits the line.
func (Renderer) Render(consultant *models.Consultant, issuedAt time.Time, verificationURL, generatedBy string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(verificationURL, qrcode.Medium, qrPixels)
	if err != nil {
		return nil, fmt.Errorf("encode verification qr: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, titleY, marginX)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, "Consultant Approval Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	registration := consultant.RegistrationNumber
	if registration == "" {
		registration = "N/A"
	}

	paragraphs := []string{
		fmt.Sprintf("This certifies that %s has been approved as a registered consultant.", consultant.FullName),
		fmt.Sprintf("Registration Number: %s", registration),
		fmt.Sprintf("Issued on %s.", FormatDate(issuedAt)),
	}
	if generatedBy != "" {
		paragraphs = append(paragraphs, fmt.Sprintf("Processed by %s.", generatedBy))
	}
	paragraphs = append(paragraphs,
		"Scan the QR code or visit the link below to verify this certificate.",
		verificationURL,
	)

	pdf.SetFont("Helvetica", "", 12)
	for _, paragraph := range paragraphs {
		pdf.MultiCell(0, 7, paragraph, "", "L", false)
		pdf.Ln(4)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("verification-qr", opts, bytes.NewReader(qrPNG))
	pageW, pageH := pdf.GetPageSize()
	pdf.ImageOptions("verification-qr", pageW-marginX-qrSizeMM, pageH-marginX-qrSizeMM, qrSizeMM, qrSizeMM, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatDate renders certificate dates the way the document and the
// notification templates show them.
func FormatDate(value time.Time) string {
	if value.IsZero() {
		return "N/A"
	}
	return value.Format("02 January 2006")
}
