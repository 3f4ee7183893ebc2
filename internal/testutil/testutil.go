package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"estatehub/internal/auth"
	"estatehub/internal/models"
)

// NewDB opens a per-test in-memory database with the full schema migrated.
// The database is named after the test so parallel tests do not share state.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Principal builds a request principal with the given permission keys.
func Principal(userID, orgID int64, admin bool, perms ...string) auth.Principal {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return auth.Principal{
		UserID:      userID,
		OrgID:       orgID,
		IsAdmin:     admin,
		Permissions: set,
	}
}
