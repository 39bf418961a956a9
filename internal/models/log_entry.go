package models

import (
	"time"

	"gorm.io/datatypes"
)

// LogEntry is a persisted audit event. The transition service and the
// notification attempt recorder write one row per significant action; the
// admin UI reads them back for traceability.
type LogEntry struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	LoggerName string         `gorm:"column:logger_name;type:varchar(128);index" json:"logger_name"`
	Level      string         `gorm:"column:level;type:varchar(16)" json:"level"`
	Message    string         `gorm:"column:message" json:"message"`
	ActorID    *uint          `gorm:"column:actor_id" json:"actor_id"`
	Context    datatypes.JSON `gorm:"column:context" json:"context"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}
