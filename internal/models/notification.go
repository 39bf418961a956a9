package models

import "time"

// NotificationKindCertificate marks in-app notifications produced by the
// certificate lifecycle jobs.
const NotificationKindCertificate = "certificate"

// Notification is an in-app message shown on the consultant dashboard.
type Notification struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConsultantID uint      `gorm:"column:consultant_id;index;not null" json:"consultant_id"`
	Kind         string    `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	Message      string    `gorm:"column:message;not null" json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
