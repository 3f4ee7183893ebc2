package crm

import (
	"context"
	"errors"
	"strings"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

type Feedbacks struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewFeedbacks(st *store.Store, notif *notify.Dispatcher) *Feedbacks {
	return &Feedbacks{st: st, notif: notif}
}

type FeedbackInput struct {
	FileID int64  `json:"file_id"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (s *Feedbacks) Create(ctx context.Context, p auth.Principal, in FeedbackInput) (*models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}
	if d := rbac.Check(p, rbac.Key("feedback", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	file, err := store.First[models.EstateFile](st, p.OrgID, in.FileID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("file_id", "unknown estate file")
		}
		return nil, err
	}

	fb := &models.Feedback{
		OrgID:    p.OrgID,
		FileID:   in.FileID,
		AuthorID: p.UserID,
		Rating:   in.Rating,
		Body:     strings.TrimSpace(in.Body),
		Status:   models.FeedbackOpen,
	}
	if err := st.Create(fb); err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   in.FileID,
		Type:       eventType(models.EntityFeedback, "created"),
		Title:      "New showing feedback",
		Message:    file.Address,
		Metadata:   map[string]any{"rating": in.Rating},
	})
	return fb, nil
}

// Resolve closes a feedback entry. Resolving twice is an accepted no-op.
func (s *Feedbacks) Resolve(ctx context.Context, p auth.Principal, id int64) (*models.Feedback, error) {
	if d := rbac.Check(p, rbac.Key("feedback", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	fb, err := store.First[models.Feedback](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if fb.Status == models.FeedbackResolved {
		return fb, nil
	}

	if err := store.Update[models.Feedback](st, p.OrgID, id, map[string]any{"status": models.FeedbackResolved}); err != nil {
		return nil, err
	}
	fb.Status = models.FeedbackResolved

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityFeedback,
		EntityID:   id,
		Type:       eventType(models.EntityFeedback, "resolved"),
		Title:      "Feedback resolved",
	})
	return fb, nil
}

func (s *Feedbacks) List(ctx context.Context, p auth.Principal, fileID int64) ([]models.Feedback, error) {
	if d := rbac.Check(p, rbac.Key("feedback", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	st := s.st.WithContext(ctx)
	if fileID > 0 {
		return store.List[models.Feedback](st, p.OrgID, "file_id = ?", fileID)
	}
	return store.List[models.Feedback](st, p.OrgID)
}
