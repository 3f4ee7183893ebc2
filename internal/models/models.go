package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Organization{},
		&User{},
		&Role{},
		&Permission{},
		&UserRole{},
		&Client{},
		&EstateFile{},
		&Section{},
		&Task{},
		&Comment{},
		&Feedback{},
		&Connection{},
		&Watch{},
		&Notification{},
		&InviteToken{},
		&AuditLog{},
	}
}
