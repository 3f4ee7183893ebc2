package models

import "time"

// Role bundles permission keys within one organization. Slugs are unique per
// org; the "admin" slug marks the system role the guard short-circuits on.
type Role struct {
	ID          int64  `gorm:"primaryKey"`
	OrgID       int64  `gorm:"uniqueIndex:idx_roles_org_slug"`
	Name        string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:200;not null;uniqueIndex:idx_roles_org_slug"`
	Description string
	IsSystem    bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Permissions []Permission `gorm:"many2many:role_permissions;"`
}
