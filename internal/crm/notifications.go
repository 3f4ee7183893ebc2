package crm

import (
	"context"
	"time"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// Notifications serves a user's own inbox; no permission key is involved
// beyond being the recipient.
type Notifications struct {
	st *store.Store
}

func NewNotifications(st *store.Store) *Notifications {
	return &Notifications{st: st}
}

func (s *Notifications) List(ctx context.Context, p auth.Principal, unreadOnly bool) ([]models.Notification, error) {
	st := s.st.WithContext(ctx)
	if unreadOnly {
		return store.List[models.Notification](st, p.OrgID, "recipient_id = ? AND read_at IS NULL", p.UserID)
	}
	return store.List[models.Notification](st, p.OrgID, "recipient_id = ?", p.UserID)
}

// MarkRead is idempotent; marking an already-read notification again keeps
// the original timestamp.
func (s *Notifications) MarkRead(ctx context.Context, p auth.Principal, id int64) error {
	st := s.st.WithContext(ctx)
	n, err := store.First[models.Notification](st, p.OrgID, id)
	if err != nil {
		return err
	}
	if n.RecipientID != p.UserID {
		return apperr.ErrNotFound
	}
	if n.ReadAt != nil {
		return nil
	}
	return store.Update[models.Notification](st, p.OrgID, id, map[string]any{"read_at": time.Now()})
}
