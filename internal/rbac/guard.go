package rbac

import (
	"strings"

	"estatehub/internal/auth"
)

// Decision is the outcome of one permission check. Reason is a stable
// machine-usable code, never localized text.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonMissingPermission = "missing_permission"
	ReasonNotOwner          = "not_owner"
	ReasonAdminOnly         = "admin_only"
)

// Check evaluates a plain permission. Rules, in order: admins are allowed
// unconditionally; a principal without the permission key is denied; anything
// else is allowed. Decisions are recomputed on every call, never cached.
func Check(p auth.Principal, permKey string) Decision {
	if p.IsAdmin {
		return Decision{Allowed: true}
	}
	if !p.Has(permKey) {
		return Decision{Reason: ReasonMissingPermission}
	}
	return Decision{Allowed: true}
}

// CheckOwned evaluates an ownership-scoped permission: the principal must
// hold the permission key and own the resource, unless it is an admin.
func CheckOwned(p auth.Principal, permKey string, ownerID int64) Decision {
	if p.IsAdmin {
		return Decision{Allowed: true}
	}
	if !p.Has(permKey) {
		return Decision{Reason: ReasonMissingPermission}
	}
	if ownerID != p.UserID {
		return Decision{Reason: ReasonNotOwner}
	}
	return Decision{Allowed: true}
}

// Key composes a permission key like "clients:read" from resource+action.
func Key(resource, action string) string { return strings.ToLower(resource + ":" + action) }
