package certificates

import (
	"time"

	"certlife-backend/internal/audit"
	"certlife-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const statusLogger = "certlife.certificates"

// TransitionParams describes one status change request.
type TransitionParams struct {
	Status    models.CertificateStatus
	ActorID   *uint
	Reason    string
	Timestamp time.Time
	// Context is caller-supplied traceability metadata merged into the audit
	// log entry (task name, source, request id, ...).
	Context map[string]interface{}
}

// UpdateStatus applies a status change to the consultant's latest certificate.
// It is the single enforcement point for status writes: callers never touch
// Certificate.Status directly.
//
// A consultant without certificate history is an expected condition (the
// application was never formally certified): the call records one
// "missing certificate" audit entry and returns (nil, nil).
func UpdateStatus(tx *gorm.DB, consultant *models.Consultant, p TransitionParams) (*models.Certificate, error) {
	store := &Store{DB: tx}
	cert, err := store.LatestForConsultantLocked(consultant.ID)
	if err != nil {
		return nil, err
	}

	if cert == nil {
		logCtx := mergeContext(p.Context, map[string]interface{}{
			"action":        "certificate.status.missing",
			"consultant_id": consultant.ID,
			"new_status":    string(p.Status),
			"reason":        p.Reason,
		})
		if err := audit.Record(tx, statusLogger, audit.LevelWarning,
			"No certificate found for status update", p.ActorID, logCtx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	at := p.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	previous := cert.Status
	cert.MarkStatus(p.Status, p.Reason, at)
	if err := tx.Save(cert).Error; err != nil {
		return nil, err
	}

	logCtx := mergeContext(p.Context, map[string]interface{}{
		"action":          "certificate.status." + string(p.Status),
		"consultant_id":   consultant.ID,
		"certificate_id":  cert.ID,
		"previous_status": string(previous),
		"new_status":      string(p.Status),
		"reason":          p.Reason,
	})
	if err := audit.Record(tx, statusLogger, audit.LevelInfo,
		"Certificate status updated", p.ActorID, logCtx); err != nil {
		return nil, err
	}

	log.Info().
		Uint("consultant_id", consultant.ID).
		Uint("certificate_id", cert.ID).
		Str("previous_status", string(previous)).
		Str("new_status", string(p.Status)).
		Msg("Certificate status transition applied")

	return cert, nil
}

// mergeContext overlays entry-specific fields on the caller context without
// mutating either map.
func mergeContext(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
