package models

import "time"

// Watch subscribes a user to notifications about one entity. The composite
/// unique index makes watch idempotent at the database level: at most one row
// per (entity, user).
type Watch struct {
	ID         int64      `gorm:"primaryKey"`
	OrgID      int64      `gorm:"index;not null"`
	EntityType EntityType `gorm:"size:32;not null;uniqueIndex:idx_watches_entity_user"`
	EntityID   int64      `gorm:"not null;uniqueIndex:idx_watches_entity_user"`
	UserID     int64      `gorm:"not null;index;uniqueIndex:idx_watches_entity_user"`
	CreatedAt  time.Time
}
