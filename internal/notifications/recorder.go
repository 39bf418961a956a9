package notifications

import (
	"fmt"
	"strings"

	"certlife-backend/internal/audit"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const notificationLogger = "certlife.notifications"

// AuditRecorder returns an AttemptObserver persisting one LogEntry per
// channel attempt, sent or not.
func AuditRecorder(db *gorm.DB) AttemptObserver {
	return func(a Attempt) {
		context := map[string]interface{}{
			"action":        "certificate.notification." + a.Event,
			"channel":       a.Channel,
			"status":        a.Status,
			"consultant_id": a.ConsultantID,
		}
		if a.CertificateID != nil {
			context["certificate_id"] = *a.CertificateID
		}
		if a.Reason != "" {
			context["reason"] = a.Reason
		}
		if len(a.Metadata) > 0 {
			context["metadata"] = a.Metadata
		}
		if a.Err != nil {
			context["error"] = a.Err.Error()
		}

		level := audit.LevelInfo
		if a.Status != StatusSent {
			level = audit.LevelWarning
		}
		message := fmt.Sprintf("%s notification for certificate %s %s",
			strings.ToUpper(a.Channel), a.Event, a.Status)

		if err := audit.Record(db, notificationLogger, level, message, a.ActorID, context); err != nil {
			log.Error().Err(err).
				Uint("consultant_id", a.ConsultantID).
				Str("channel", a.Channel).
				Msg("Failed to record notification attempt")
		}
	}
}
