package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID            int64          `gorm:"primaryKey"`
	OrgID         int64          `gorm:"index;not null"`
	UserID        int64          `gorm:"index"`             // nullable (system actions possible)
	Action        string         `gorm:"size:200;not null"` // e.g. "clients.create", "users.deactivate"
	ResourceType  string         `gorm:"size:100"`
	ResourceID    int64          `gorm:"index"`
	Metadata      datatypes.JSON `gorm:"type:json"`
	IP            string         `gorm:"size:64"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255"`
	CreatedAt     time.Time

	Org  *Organization `gorm:"foreignKey:OrgID"`
	User *User         `gorm:"foreignKey:UserID"`
}
