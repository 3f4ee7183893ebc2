package models

import (
	"time"

	"gorm.io/datatypes"
)

type EstateFileStatus string

const (
	FileDraft      EstateFileStatus = "draft"
	FileListed     EstateFileStatus = "listed"
	FileUnderOffer EstateFileStatus = "under_offer"
	FileSold       EstateFileStatus = "sold"
	FileArchived   EstateFileStatus = "archived"
)

// EstateFile is a property transaction dossier: one listing plus the sections
// of work (tasks) attached to it.
type EstateFile struct {
	ID        int64            `gorm:"primaryKey"`
	OrgID     int64            `gorm:"index;not null"`
	OwnerID   int64            `gorm:"index"`
	ClientID  *int64           `gorm:"index"`
	Reference string           `gorm:"size:64;uniqueIndex;not null"`
	Address   string           `gorm:"size:255;not null"`
	ListPrice int64            // cents
	Status    EstateFileStatus `gorm:"size:32;default:draft"`
	Metadata  datatypes.JSON   `gorm:"type:json"` // listing details (rooms, surface, MLS ids)
	CreatedAt time.Time
	UpdatedAt time.Time

	Org      *Organization `gorm:"foreignKey:OrgID"`
	Client   *Client       `gorm:"foreignKey:ClientID"`
	Sections []Section     `gorm:"foreignKey:FileID"`
}
