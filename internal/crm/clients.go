package crm

import (
	"context"
	"strings"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

type Clients struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewClients(st *store.Store, notif *notify.Dispatcher) *Clients {
	return &Clients{st: st, notif: notif}
}

type ClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Stage string `json:"stage"`
	Notes string `json:"notes"`
}

func validClientStage(s models.ClientStage) bool {
	switch s {
	case models.ClientLead, models.ClientActive, models.ClientClosed, models.ClientDormant:
		return true
	}
	return false
}

func (s *Clients) Create(ctx context.Context, p auth.Principal, in ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "required")
	}
	stage := models.ClientStage(in.Stage)
	if in.Stage == "" {
		stage = models.ClientLead
	}
	if !validClientStage(stage) {
		return nil, apperr.Validation("stage", "unknown value")
	}
	if d := rbac.Check(p, rbac.Key("clients", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	client := &models.Client{
		OrgID:   p.OrgID,
		OwnerID: p.UserID,
		Name:    name,
		Email:   strings.TrimSpace(strings.ToLower(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Stage:   stage,
		Notes:   in.Notes,
	}
	if err := s.st.WithContext(ctx).Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Clients) Update(ctx context.Context, p auth.Principal, id int64, in ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "required")
	}
	stage := models.ClientStage(in.Stage)
	if in.Stage != "" && !validClientStage(stage) {
		return nil, apperr.Validation("stage", "unknown value")
	}
	if d := rbac.Check(p, rbac.Key("clients", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	fields := map[string]any{
		"name":  name,
		"email": strings.TrimSpace(strings.ToLower(in.Email)),
		"phone": strings.TrimSpace(in.Phone),
		"notes": in.Notes,
	}
	if in.Stage != "" {
		fields["stage"] = stage
	}
	if err := store.Update[models.Client](st, p.OrgID, id, fields); err != nil {
		return nil, err
	}

	updated, err := store.First[models.Client](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityClient,
		EntityID:   id,
		Type:       eventType(models.EntityClient, "updated"),
		Title:      "Client updated",
		Message:    updated.Name,
	})
	return updated, nil
}

// Delete removes the client together with its connection requests and watch
// rows in one transaction. Watchers are captured before the watch rows go,
// and notified only after the transaction committed.
func (s *Clients) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if d := rbac.Check(p, rbac.Key("clients", "write")); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	client, err := store.First[models.Client](st, p.OrgID, id)
	if err != nil {
		return err
	}

	var recipients []int64
	err = st.Transaction(func(tx *store.Store) error {
		var err error
		recipients, err = tx.Watchers(p.OrgID, models.EntityClient, id)
		if err != nil {
			return err
		}
		if err := tx.ClearWatches(p.OrgID, models.EntityClient, id); err != nil {
			return err
		}
		if err := store.DeleteWhere[models.Connection](tx, p.OrgID, "client_id = ?", id); err != nil {
			return err
		}
		return store.Delete[models.Client](tx, p.OrgID, id)
	})
	if err != nil {
		return err
	}

	s.notif.NotifyUsers(ctx, recipients, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityClient,
		EntityID:   id,
		Type:       eventType(models.EntityClient, "deleted"),
		Title:      "Client removed",
		Message:    client.Name,
	})
	return nil
}

func (s *Clients) Get(ctx context.Context, p auth.Principal, id int64) (*models.Client, error) {
	if d := rbac.Check(p, rbac.Key("clients", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.First[models.Client](s.st.WithContext(ctx), p.OrgID, id)
}

func (s *Clients) List(ctx context.Context, p auth.Principal) ([]models.Client, error) {
	if d := rbac.Check(p, rbac.Key("clients", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.Client](s.st.WithContext(ctx), p.OrgID)
}
