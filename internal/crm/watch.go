package crm

import (
	"context"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

// Watches implements watch/unwatch across every watchable entity kind.
type Watches struct {
	st *store.Store
}

func NewWatches(st *store.Store) *Watches {
	return &Watches{st: st}
}

// Watch subscribes the principal to an entity it can read. Watching twice is
// a no-op success.
func (s *Watches) Watch(ctx context.Context, p auth.Principal, et models.EntityType, id int64) error {
	spec, ok := kinds[et]
	if !ok || !spec.watchable {
		return apperr.Validation("entity_type", "not watchable")
	}
	if d := rbac.Check(p, rbac.Key(spec.resource, "read")); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}
	st := s.st.WithContext(ctx)
	if err := spec.exists(st, p.OrgID, id); err != nil {
		return err
	}
	return st.Watch(p.OrgID, et, id, p.UserID)
}

// Unwatch removes the subscription. Unwatching a non-watcher is a no-op
// success.
func (s *Watches) Unwatch(ctx context.Context, p auth.Principal, et models.EntityType, id int64) error {
	spec, ok := kinds[et]
	if !ok || !spec.watchable {
		return apperr.Validation("entity_type", "not watchable")
	}
	if d := rbac.Check(p, rbac.Key(spec.resource, "read")); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}
	st := s.st.WithContext(ctx)
	if err := spec.exists(st, p.OrgID, id); err != nil {
		return err
	}
	return st.Unwatch(p.OrgID, et, id, p.UserID)
}
