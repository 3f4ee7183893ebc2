package models

import "time"

type FeedbackStatus string

const (
	FeedbackOpen     FeedbackStatus = "open"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Feedback captures a showing/visit report against an estate file.
type Feedback struct {
	ID        int64          `gorm:"primaryKey"`
	OrgID     int64          `gorm:"index;not null"`
	FileID    int64          `gorm:"index;not null"`
	AuthorID  int64          `gorm:"index"`
	Rating    int            // 1..5
	Body      string         `gorm:"type:text"`
	Status    FeedbackStatus `gorm:"size:16;default:open"`
	CreatedAt time.Time
	UpdatedAt time.Time

	File *EstateFile `gorm:"foreignKey:FileID"`
}
