package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

type Connections struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewConnections(st *store.Store, notif *notify.Dispatcher) *Connections {
	return &Connections{st: st, notif: notif}
}

type ConnectionInput struct {
	ClientID int64  `json:"client_id"`
	UserID   int64  `json:"user_id"`
	Message  string `json:"message"`
}

// Request routes a client to an agent and notifies the agent.
func (s *Connections) Request(ctx context.Context, p auth.Principal, in ConnectionInput) (*models.Connection, error) {
	if in.ClientID == 0 {
		return nil, apperr.Validation("client_id", "required")
	}
	if in.UserID == 0 {
		return nil, apperr.Validation("user_id", "required")
	}
	if d := rbac.Check(p, rbac.Key("connections", "manage")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	client, err := store.First[models.Client](st, p.OrgID, in.ClientID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("client_id", "unknown client")
		}
		return nil, err
	}
	target, err := store.First[models.User](st, p.OrgID, in.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("user_id", "unknown user")
		}
		return nil, err
	}
	if target.Status != models.UserActive {
		return nil, apperr.Validation("user_id", "user is deactivated")
	}

	conn := &models.Connection{
		OrgID:     p.OrgID,
		ClientID:  in.ClientID,
		UserID:    in.UserID,
		CreatedBy: p.UserID,
		Message:   strings.TrimSpace(in.Message),
		Status:    models.ConnectionPending,
	}
	if err := st.Create(conn); err != nil {
		return nil, err
	}

	s.notif.NotifyUsers(ctx, []int64{in.UserID}, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityConnection,
		EntityID:   conn.ID,
		Type:       eventType(models.EntityConnection, "requested"),
		Title:      "New client connection request",
		Message:    client.Name,
	})
	return conn, nil
}

func (s *Connections) Accept(ctx context.Context, p auth.Principal, id int64) (*models.Connection, error) {
	return s.decide(ctx, p, id, models.ConnectionAccepted)
}

func (s *Connections) Reject(ctx context.Context, p auth.Principal, id int64) (*models.Connection, error) {
	return s.decide(ctx, p, id, models.ConnectionRejected)
}

// decide applies accept/reject. Only the routed agent (or an admin) may
// decide, and only a pending connection can be decided; the conditional
// update keeps a concurrent double-decision out.
func (s *Connections) decide(ctx context.Context, p auth.Principal, id int64, verdict models.ConnectionStatus) (*models.Connection, error) {
	st := s.st.WithContext(ctx)
	conn, err := store.First[models.Connection](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if d := rbac.CheckOwned(p, rbac.Key("connections", "manage"), conn.UserID); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperr.Conflict("not_pending")
	}

	now := time.Now()
	rows, err := store.UpdateIf[models.Connection](st, p.OrgID, id,
		map[string]any{"status": verdict, "decided_at": now},
		"status = ?", models.ConnectionPending)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.Conflict("not_pending")
	}
	conn.Status = verdict
	conn.DecidedAt = &now

	verb := "accepted"
	if verdict == models.ConnectionRejected {
		verb = "rejected"
	}
	s.notif.NotifyUsers(ctx, []int64{conn.CreatedBy}, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityConnection,
		EntityID:   id,
		Type:       eventType(models.EntityConnection, verb),
		Title:      "Connection " + verb,
	})
	return conn, nil
}

func (s *Connections) List(ctx context.Context, p auth.Principal) ([]models.Connection, error) {
	if d := rbac.Check(p, rbac.Key("connections", "manage")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.Connection](s.st.WithContext(ctx), p.OrgID)
}
