package models

import "time"

type ClientStage string

const (
	ClientLead    ClientStage = "lead"
	ClientActive  ClientStage = "active"
	ClientClosed  ClientStage = "closed"
	ClientDormant ClientStage = "dormant"
)

// Client is a contact owned by an organization, typically a buyer or seller
// assigned to one agent.
type Client struct {
	ID        int64       `gorm:"primaryKey"`
	OrgID     int64       `gorm:"index;not null"`
	OwnerID   int64       `gorm:"index"` // responsible agent
	Name      string      `gorm:"size:200;not null"`
	Email     string      `gorm:"size:255"`
	Phone     string      `gorm:"size:50"`
	Stage     ClientStage `gorm:"size:32;default:lead"`
	Notes     string      `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Org *Organization `gorm:"foreignKey:OrgID"`
}
