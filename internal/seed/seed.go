package seed

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"estatehub/internal/models"
)

// FirstSetup makes sure a fresh database has a default organization, the
// standard roles and permissions, and one admin account to log in with.
// Every step is idempotent so it can run on each boot.
func FirstSetup(db *gorm.DB) error {
	org := models.Organization{Name: "Default Organization", Slug: "default"}
	if err := db.Where("slug = ?", org.Slug).FirstOrCreate(&org).Error; err != nil {
		return err
	}

	adminRole := models.Role{OrgID: org.ID, Name: "Administrator", Slug: "admin", IsSystem: true}
	agentRole := models.Role{OrgID: org.ID, Name: "Agent", Slug: "agent"}
	assistantRole := models.Role{OrgID: org.ID, Name: "Assistant", Slug: "assistant"}

	if err := db.Where("org_id=? AND slug=?", org.ID, adminRole.Slug).FirstOrCreate(&adminRole).Error; err != nil {
		return err
	}
	if err := db.Where("org_id=? AND slug=?", org.ID, agentRole.Slug).FirstOrCreate(&agentRole).Error; err != nil {
		return err
	}
	if err := db.Where("org_id=? AND slug=?", org.ID, assistantRole.Slug).FirstOrCreate(&assistantRole).Error; err != nil {
		return err
	}

	perms := []models.Permission{
		{Key: "clients:read", Description: "View clients", Resource: "clients", Action: "read"},
		{Key: "clients:write", Description: "Manage clients", Resource: "clients", Action: "write"},
		{Key: "files:read", Description: "View estate files", Resource: "files", Action: "read"},
		{Key: "files:write", Description: "Manage estate files", Resource: "files", Action: "write"},
		{Key: "tasks:read", Description: "View sections and tasks", Resource: "tasks", Action: "read"},
		{Key: "tasks:write", Description: "Manage sections and tasks", Resource: "tasks", Action: "write"},
		{Key: "tasks:delete", Description: "Delete own tasks", Resource: "tasks", Action: "delete"},
		{Key: "feedback:read", Description: "View showing feedback", Resource: "feedback", Action: "read"},
		{Key: "feedback:write", Description: "Manage showing feedback", Resource: "feedback", Action: "write"},
		{Key: "connections:manage", Description: "Request and decide client connections", Resource: "connections", Action: "manage"},
		{Key: "users:read", Description: "View users", Resource: "users", Action: "read"},
		{Key: "audit:read", Description: "View audit logs", Resource: "audit", Action: "read"},
	}

	permIDs := map[string]int64{}
	for _, p := range perms {
		tmp := p
		if err := db.Where("`key` = ?", tmp.Key).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
		permIDs[tmp.Key] = tmp.ID
	}

	// Direct inserts into the join table; it has no id column of its own.
	ensureRolePerm := func(roleID, permID int64) error {
		var count int64
		if err := db.Table("role_permissions").
			Where("role_id = ? AND permission_id = ?", roleID, permID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return db.Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permID).Error
	}

	// Admin gets everything
	for _, pid := range permIDs {
		if err := ensureRolePerm(adminRole.ID, pid); err != nil {
			return err
		}
	}

	agentKeys := []string{
		"clients:read", "clients:write",
		"files:read", "files:write",
		"tasks:read", "tasks:write", "tasks:delete",
		"feedback:read", "feedback:write",
		"connections:manage",
		"users:read",
	}
	for _, k := range agentKeys {
		if err := ensureRolePerm(agentRole.ID, permIDs[k]); err != nil {
			return err
		}
	}

	assistantKeys := []string{"clients:read", "files:read", "tasks:read", "tasks:write", "feedback:read"}
	for _, k := range assistantKeys {
		if err := ensureRolePerm(assistantRole.ID, permIDs[k]); err != nil {
			return err
		}
	}

	const adminEmail = "admin@example.com"
	const adminPass = "admin123" // change after first login

	passHash, _ := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)

	adminUser := models.User{
		OrgID:        org.ID,
		Email:        adminEmail,
		Name:         "Admin User",
		Status:       models.UserActive,
		AuthProvider: "local",
		PasswordHash: string(passHash),
	}
	if err := db.Where("org_id=? AND email=?", org.ID, adminEmail).FirstOrCreate(&adminUser).Error; err != nil {
		return err
	}

	var linkCount int64
	if err := db.Table("user_roles").
		Where("user_id = ? AND role_id = ? AND org_id = ?", adminUser.ID, adminRole.ID, org.ID).
		Count(&linkCount).Error; err != nil {
		return err
	}
	if linkCount == 0 {
		if err := db.Exec("INSERT INTO user_roles (user_id, role_id, org_id) VALUES (?, ?, ?)",
			adminUser.ID, adminRole.ID, org.ID).Error; err != nil {
			return err
		}
	}

	log.Info().
		Str("admin", adminEmail).
		Str("org", org.Slug).
		Int("permissions", len(perms)).
		Msg("seed ok")
	return nil
}
