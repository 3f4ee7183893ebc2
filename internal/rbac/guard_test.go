package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estatehub/internal/auth"
)

func principal(userID int64, admin bool, perms ...string) auth.Principal {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return auth.Principal{UserID: userID, OrgID: 1, IsAdmin: admin, Permissions: set}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		p       auth.Principal
		perm    string
		allowed bool
		reason  string
	}{
		{"admin bypasses everything", principal(1, true), "clients:write", true, ""},
		{"holder is allowed", principal(1, false, "clients:write"), "clients:write", true, ""},
		{"missing permission denied", principal(1, false, "clients:read"), "clients:write", false, ReasonMissingPermission},
		{"empty permission set denied", principal(1, false), "clients:read", false, ReasonMissingPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Check(tt.p, tt.perm)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckOwned(t *testing.T) {
	tests := []struct {
		name    string
		p       auth.Principal
		ownerID int64
		allowed bool
		reason  string
	}{
		{"admin may touch anything", principal(1, true), 99, true, ""},
		{"owner with permission allowed", principal(5, false, "tasks:delete"), 5, true, ""},
		{"permission checked before ownership", principal(5, false), 5, false, ReasonMissingPermission},
		{"non-owner denied", principal(5, false, "tasks:delete"), 6, false, ReasonNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckOwned(tt.p, "tasks:delete", tt.ownerID)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "clients:read", Key("Clients", "Read"))
}
