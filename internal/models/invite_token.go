package models

import "time"

// InviteToken is a one-time or time-limited token that lets an invited
// address create an account inside the issuing organization.
type InviteToken struct {
	ID        int64      `gorm:"primaryKey"`
	OrgID     int64      `gorm:"index;not null"`
	Email     string     `gorm:"size:255;not null"`
	Token     string     `gorm:"size:128;index;not null"`
	RoleID    *int64     `gorm:"index;null"`
	Used      bool       `gorm:"default:false"`
	ExpiresAt *time.Time `gorm:"index;null"`
	CreatedAt time.Time
}
