package crm

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

// Users covers account administration: creation, activation, the identity
// provider sync, and the invite flow. All of it sits behind admin-only
// routes; validation still happens here.
type Users struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewUsers(st *store.Store, notif *notify.Dispatcher) *Users {
	return &Users{st: st, notif: notif}
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   *int64 `json:"role_id"`
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *Users) Create(ctx context.Context, p auth.Principal, in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("email", "required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name", "required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password", "must be at least 8 characters")
	}

	st := s.st.WithContext(ctx)
	existing, err := store.Count[models.User](st, p.OrgID, "email = ?", email)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperr.Conflict("email_taken")
	}
	if in.RoleID != nil {
		if _, err := store.First[models.Role](st, p.OrgID, *in.RoleID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("role_id", "unknown role")
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		OrgID:        p.OrgID,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		AuthProvider: "local",
		PasswordHash: string(hash),
		Status:       models.UserActive,
	}
	err = st.Transaction(func(tx *store.Store) error {
		if err := tx.Create(user); err != nil {
			return err
		}
		if in.RoleID != nil {
			return tx.Create(&models.UserRole{UserID: user.ID, RoleID: *in.RoleID, OrgID: p.OrgID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Activate re-enables an account. Activating a user that is already active
// is an accepted no-op and sends nothing.
func (s *Users) Activate(ctx context.Context, p auth.Principal, id int64) (*models.User, error) {
	st := s.st.WithContext(ctx)
	user, err := store.First[models.User](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserActive {
		return user, nil
	}

	if err := store.Update[models.User](st, p.OrgID, id, map[string]any{"status": models.UserActive}); err != nil {
		return nil, err
	}
	user.Status = models.UserActive

	s.notif.NotifyUsers(ctx, []int64{id}, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityUser,
		EntityID:   id,
		Type:       eventType(models.EntityUser, "activated"),
		Title:      "Account reactivated",
	})
	return user, nil
}

// Deactivate disables an account; idempotent like Activate. The principal
// cannot deactivate itself.
func (s *Users) Deactivate(ctx context.Context, p auth.Principal, id int64) (*models.User, error) {
	if id == p.UserID {
		return nil, apperr.Validation("id", "cannot deactivate own account")
	}

	st := s.st.WithContext(ctx)
	user, err := store.First[models.User](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserInactive {
		return user, nil
	}

	if err := store.Update[models.User](st, p.OrgID, id, map[string]any{"status": models.UserInactive}); err != nil {
		return nil, err
	}
	user.Status = models.UserInactive
	return user, nil
}

type ProviderProfile struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Sync upserts the local user record from the hosted identity provider's
// profile: match on provider subject first, then on email, otherwise create.
func (s *Users) Sync(ctx context.Context, p auth.Principal, in ProviderProfile) (*models.User, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, apperr.Validation("subject", "required")
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("email", "required")
	}

	st := s.st.WithContext(ctx)
	matches, err := store.List[models.User](st, p.OrgID, "provider_subject = ?", in.Subject)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		user := matches[0]
		err := store.Update[models.User](st, p.OrgID, user.ID, map[string]any{
			"email": email,
			"name":  strings.TrimSpace(in.Name),
		})
		if err != nil {
			return nil, err
		}
		user.Email = email
		user.Name = strings.TrimSpace(in.Name)
		return &user, nil
	}

	byEmail, err := store.List[models.User](st, p.OrgID, "email = ?", email)
	if err != nil {
		return nil, err
	}
	if len(byEmail) > 0 {
		user := byEmail[0]
		err := store.Update[models.User](st, p.OrgID, user.ID, map[string]any{
			"provider_subject": in.Subject,
			"auth_provider":    "hosted",
			"name":             strings.TrimSpace(in.Name),
		})
		if err != nil {
			return nil, err
		}
		user.ProviderSubject = in.Subject
		user.AuthProvider = "hosted"
		user.Name = strings.TrimSpace(in.Name)
		return &user, nil
	}

	user := &models.User{
		OrgID:           p.OrgID,
		Email:           email,
		Name:            strings.TrimSpace(in.Name),
		AuthProvider:    "hosted",
		ProviderSubject: in.Subject,
		Status:          models.UserActive,
	}
	if err := st.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

type InviteInput struct {
	Email      string `json:"email"`
	TTLMinutes int    `json:"ttl_minutes"`
	RoleID     *int64 `json:"role_id"`
}

// Invite issues a one-time token for the given address.
func (s *Users) Invite(ctx context.Context, p auth.Principal, in InviteInput) (*models.InviteToken, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("email", "required")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, apperr.Internal(err)
	}
	tok := base64.RawURLEncoding.EncodeToString(b)

	var expires *time.Time
	if in.TTLMinutes > 0 {
		t := time.Now().Add(time.Duration(in.TTLMinutes) * time.Minute)
		expires = &t
	}

	invite := &models.InviteToken{
		OrgID:     p.OrgID,
		Email:     email,
		Token:     tok,
		RoleID:    in.RoleID,
		ExpiresAt: expires,
	}
	if err := s.st.WithContext(ctx).Create(invite); err != nil {
		return nil, err
	}
	return invite, nil
}

type RedeemInput struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Redeem turns a valid invite into an account. The invite is consumed and
// the user created in one transaction.
func (s *Users) Redeem(ctx context.Context, in RedeemInput) (*models.User, error) {
	if strings.TrimSpace(in.Token) == "" {
		return nil, apperr.Validation("token", "required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password", "must be at least 8 characters")
	}

	var invite models.InviteToken
	if err := s.st.WithContext(ctx).FindInvite(in.Token, &invite); err != nil {
		return nil, err
	}
	if invite.Used {
		return nil, apperr.Conflict("invite_used")
	}
	if invite.ExpiresAt != nil && time.Now().After(*invite.ExpiresAt) {
		return nil, apperr.Conflict("invite_expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		OrgID:        invite.OrgID,
		Email:        invite.Email,
		Name:         strings.TrimSpace(in.Name),
		AuthProvider: "local",
		PasswordHash: string(hash),
		Status:       models.UserActive,
	}
	err = s.st.WithContext(ctx).Transaction(func(tx *store.Store) error {
		rows, err := store.UpdateIf[models.InviteToken](tx, invite.OrgID, invite.ID,
			map[string]any{"used": true}, "used = ?", false)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("invite_used")
		}
		if err := tx.Create(user); err != nil {
			return err
		}
		if invite.RoleID != nil {
			return tx.Create(&models.UserRole{UserID: user.ID, RoleID: *invite.RoleID, OrgID: invite.OrgID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AssignRoles replaces the user's role set within the organization.
func (s *Users) AssignRoles(ctx context.Context, p auth.Principal, userID int64, roleIDs []int64) error {
	st := s.st.WithContext(ctx)
	if _, err := store.First[models.User](st, p.OrgID, userID); err != nil {
		return err
	}
	for _, rid := range roleIDs {
		if _, err := store.First[models.Role](st, p.OrgID, rid); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Validation("role_ids", "unknown role")
			}
			return err
		}
	}

	return st.Transaction(func(tx *store.Store) error {
		if err := store.DeleteWhere[models.UserRole](tx, p.OrgID, "user_id = ?", userID); err != nil {
			return err
		}
		for _, rid := range roleIDs {
			if err := tx.Create(&models.UserRole{UserID: userID, RoleID: rid, OrgID: p.OrgID}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Users) List(ctx context.Context, p auth.Principal) ([]models.User, error) {
	if d := rbac.Check(p, rbac.Key("users", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.User](s.st.WithContext(ctx), p.OrgID)
}
