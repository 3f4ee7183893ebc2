package crm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

type EstateFiles struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewEstateFiles(st *store.Store, notif *notify.Dispatcher) *EstateFiles {
	return &EstateFiles{st: st, notif: notif}
}

type EstateFileInput struct {
	Address   string         `json:"address"`
	ClientID  *int64         `json:"client_id"`
	ListPrice int64          `json:"list_price"`
	Metadata  map[string]any `json:"metadata"`
}

func validFileStatus(s models.EstateFileStatus) bool {
	switch s {
	case models.FileDraft, models.FileListed, models.FileUnderOffer, models.FileSold, models.FileArchived:
		return true
	}
	return false
}

func (s *EstateFiles) Create(ctx context.Context, p auth.Principal, in EstateFileInput) (*models.EstateFile, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, apperr.Validation("address", "required")
	}
	if in.ListPrice < 0 {
		return nil, apperr.Validation("list_price", "must not be negative")
	}
	if d := rbac.Check(p, rbac.Key("files", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	if in.ClientID != nil {
		if _, err := store.First[models.Client](st, p.OrgID, *in.ClientID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("client_id", "unknown client")
			}
			return nil, err
		}
	}

	var meta datatypes.JSON
	if len(in.Metadata) > 0 {
		if b, err := json.Marshal(in.Metadata); err == nil {
			meta = datatypes.JSON(b)
		}
	}

	file := &models.EstateFile{
		OrgID:     p.OrgID,
		OwnerID:   p.UserID,
		ClientID:  in.ClientID,
		Reference: uuid.NewString(),
		Address:   address,
		ListPrice: in.ListPrice,
		Status:    models.FileDraft,
		Metadata:  meta,
	}
	if err := st.Create(file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *EstateFiles) Update(ctx context.Context, p auth.Principal, id int64, in EstateFileInput) (*models.EstateFile, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, apperr.Validation("address", "required")
	}
	if in.ListPrice < 0 {
		return nil, apperr.Validation("list_price", "must not be negative")
	}
	if d := rbac.Check(p, rbac.Key("files", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	fields := map[string]any{
		"address":    address,
		"list_price": in.ListPrice,
	}
	if len(in.Metadata) > 0 {
		if b, err := json.Marshal(in.Metadata); err == nil {
			fields["metadata"] = datatypes.JSON(b)
		}
	}
	if err := store.Update[models.EstateFile](st, p.OrgID, id, fields); err != nil {
		return nil, err
	}
	file, err := store.First[models.EstateFile](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   id,
		Type:       eventType(models.EntityEstateFile, "updated"),
		Title:      "Estate file updated",
		Message:    file.Address,
	})
	return file, nil
}

// UpdateStatus moves the file through the listing lifecycle. Setting the
// status it already has is an accepted no-op and notifies nobody.
func (s *EstateFiles) UpdateStatus(ctx context.Context, p auth.Principal, id int64, status string) (*models.EstateFile, error) {
	next := models.EstateFileStatus(status)
	if !validFileStatus(next) {
		return nil, apperr.Validation("status", "unknown value")
	}
	if d := rbac.Check(p, rbac.Key("files", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	file, err := store.First[models.EstateFile](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if file.Status == next {
		return file, nil
	}

	prev := file.Status
	if err := store.Update[models.EstateFile](st, p.OrgID, id, map[string]any{"status": next}); err != nil {
		return nil, err
	}
	file.Status = next

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   id,
		Type:       eventType(models.EntityEstateFile, "status_changed"),
		Title:      "Estate file status changed",
		Message:    file.Address,
		Metadata:   map[string]any{"from": prev, "to": next},
	})
	return file, nil
}

// Delete removes the file with everything hanging off it: sections, their
// tasks, task comments, feedback, and all watch rows. One transaction,
// all-or-nothing.
func (s *EstateFiles) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if d := rbac.Check(p, rbac.Key("files", "write")); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	file, err := store.First[models.EstateFile](st, p.OrgID, id)
	if err != nil {
		return err
	}

	var recipients []int64
	err = st.Transaction(func(tx *store.Store) error {
		var err error
		recipients, err = tx.Watchers(p.OrgID, models.EntityEstateFile, id)
		if err != nil {
			return err
		}

		var sectionIDs []int64
		if err := store.Pluck[models.Section](tx, p.OrgID, "id", &sectionIDs, "file_id = ?", id); err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			var taskIDs []int64
			if err := store.Pluck[models.Task](tx, p.OrgID, "id", &taskIDs, "section_id IN ?", sectionIDs); err != nil {
				return err
			}
			if len(taskIDs) > 0 {
				if err := store.DeleteWhere[models.Comment](tx, p.OrgID, "task_id IN ?", taskIDs); err != nil {
					return err
				}
				if err := store.DeleteWhere[models.Watch](tx, p.OrgID, "entity_type = ? AND entity_id IN ?", models.EntityTask, taskIDs); err != nil {
					return err
				}
				if err := store.DeleteWhere[models.Task](tx, p.OrgID, "id IN ?", taskIDs); err != nil {
					return err
				}
			}
			if err := store.DeleteWhere[models.Section](tx, p.OrgID, "id IN ?", sectionIDs); err != nil {
				return err
			}
		}
		var feedbackIDs []int64
		if err := store.Pluck[models.Feedback](tx, p.OrgID, "id", &feedbackIDs, "file_id = ?", id); err != nil {
			return err
		}
		if len(feedbackIDs) > 0 {
			if err := store.DeleteWhere[models.Watch](tx, p.OrgID, "entity_type = ? AND entity_id IN ?", models.EntityFeedback, feedbackIDs); err != nil {
				return err
			}
			if err := store.DeleteWhere[models.Feedback](tx, p.OrgID, "id IN ?", feedbackIDs); err != nil {
				return err
			}
		}
		if err := tx.ClearWatches(p.OrgID, models.EntityEstateFile, id); err != nil {
			return err
		}
		return store.Delete[models.EstateFile](tx, p.OrgID, id)
	})
	if err != nil {
		return err
	}

	s.notif.NotifyUsers(ctx, recipients, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   id,
		Type:       eventType(models.EntityEstateFile, "deleted"),
		Title:      "Estate file removed",
		Message:    file.Address,
	})
	return nil
}

func (s *EstateFiles) Get(ctx context.Context, p auth.Principal, id int64) (*models.EstateFile, error) {
	if d := rbac.Check(p, rbac.Key("files", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.First[models.EstateFile](s.st.WithContext(ctx), p.OrgID, id)
}

func (s *EstateFiles) List(ctx context.Context, p auth.Principal) ([]models.EstateFile, error) {
	if d := rbac.Check(p, rbac.Key("files", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.EstateFile](s.st.WithContext(ctx), p.OrgID)
}
