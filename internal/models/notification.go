package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is one in-app message for one recipient. Delivery beyond this
// row (push, email) belongs to an external sink.
type Notification struct {
	ID          int64          `gorm:"primaryKey"`
	OrgID       int64          `gorm:"index;not null"`
	RecipientID int64          `gorm:"index;not null"`
	Type        string         `gorm:"size:64;not null"` // e.g. "client.deleted"
	Title       string         `gorm:"size:255"`
	Message     string         `gorm:"size:500"`
	EntityType  EntityType     `gorm:"size:32"`
	EntityID    int64          `gorm:"index"`
	Metadata    datatypes.JSON `gorm:"type:json"`
	ReadAt      *time.Time
	CreatedAt   time.Time
}
