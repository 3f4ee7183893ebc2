package models

// UserRole is the join between users and roles within an organization. The
// `user_roles` table uses a composite primary key (user_id, role_id, org_id).
type UserRole struct {
	UserID int64 `gorm:"primaryKey"`
	RoleID int64 `gorm:"primaryKey"`
	OrgID  int64 `gorm:"primaryKey"`
}
