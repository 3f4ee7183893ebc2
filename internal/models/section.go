package models

import "time"

// Section groups the tasks of an estate file (e.g. "Listing prep",
// "Closing"). Deleting a section takes its tasks and their comments with it.
type Section struct {
	ID        int64  `gorm:"primaryKey"`
	OrgID     int64  `gorm:"index;not null"`
	FileID    int64  `gorm:"index;not null"`
	Title     string `gorm:"size:200;not null"`
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time

	File  *EstateFile `gorm:"foreignKey:FileID"`
	Tasks []Task      `gorm:"foreignKey:SectionID"`
}
