package models

import "time"

type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Task struct {
	ID         int64      `gorm:"primaryKey"`
	OrgID      int64      `gorm:"index;not null"`
	SectionID  int64      `gorm:"index;not null"`
	CreatorID  int64      `gorm:"index"`
	AssigneeID *int64     `gorm:"index"`
	Title      string     `gorm:"size:255;not null"`
	Status     TaskStatus `gorm:"size:32;default:open"`
	DueAt      *time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Section  *Section  `gorm:"foreignKey:SectionID"`
	Comments []Comment `gorm:"foreignKey:TaskID"`
}

type Comment struct {
	ID        int64  `gorm:"primaryKey"`
	OrgID     int64  `gorm:"index;not null"`
	TaskID    int64  `gorm:"index;not null"`
	AuthorID  int64  `gorm:"index"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
