package models

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a request to link a client to an agent. Only the pending
// state can be decided; accepting or rejecting twice is a conflict.
type Connection struct {
	ID        int64            `gorm:"primaryKey"`
	OrgID     int64            `gorm:"index;not null"`
	ClientID  int64            `gorm:"index;not null"`
	UserID    int64            `gorm:"index;not null"` // agent the client is routed to
	CreatedBy int64            `gorm:"index"`
	Message   string           `gorm:"size:500"`
	Status    ConnectionStatus `gorm:"size:16;default:pending"`
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
	User   *User   `gorm:"foreignKey:UserID"`
}
