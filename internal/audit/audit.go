// Package audit persists structured log entries alongside the zerolog stream
// so that staff can trace certificate activity from the admin UI.
package audit

import (
	"encoding/json"

	"certlife-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
)

// Record writes one LogEntry row and mirrors it to the process logger.
// Context must be JSON-serializable; a marshal failure drops the context but
// still records the entry.
func Record(db *gorm.DB, loggerName, level, message string, actorID *uint, context map[string]interface{}) error {
	var raw json.RawMessage
	if context != nil {
		encoded, err := json.Marshal(context)
		if err != nil {
			log.Error().Err(err).Str("logger", loggerName).Msg("Failed to encode audit context")
		} else {
			raw = encoded
		}
	}

	entry := models.LogEntry{
		LoggerName: loggerName,
		Level:      level,
		Message:    message,
		ActorID:    actorID,
		Context:    []byte(raw),
	}
	if err := db.Create(&entry).Error; err != nil {
		return err
	}

	event := log.Info()
	if level != LevelInfo {
		event = log.Warn()
	}
	event.Str("logger", loggerName).Interface("context", context).Msg(message)
	return nil
}
