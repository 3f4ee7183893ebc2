package crm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"estatehub/internal/apperr"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/testutil"
)

func TestUserActivateIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := crm.NewUsers(f.st, f.dispat)
	admin := testutil.Principal(99, 1, true)

	u, err := users.Create(ctx, admin, crm.CreateUserInput{
		Email: "kare@example.com", Name: "Kare", Password: "longenough",
	})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")))

	_, err = users.Deactivate(ctx, admin, u.ID)
	require.NoError(t, err)

	got, err := users.Activate(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, got.Status)
	assert.Len(t, f.notifications(t, u.ID), 1)

	// second activation changes nothing and stays silent
	got, err = users.Activate(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, got.Status)
	assert.Len(t, f.notifications(t, u.ID), 1)
}

func TestUserDeactivateSelf(t *testing.T) {
	f := newFixture(t)
	users := crm.NewUsers(f.st, f.dispat)
	admin := testutil.Principal(1, 1, true)

	_, err := users.Deactivate(context.Background(), admin, admin.UserID)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := crm.NewUsers(f.st, f.dispat)
	admin := testutil.Principal(1, 1, true)

	in := crm.CreateUserInput{Email: "Dup@Example.com", Name: "Dup", Password: "longenough"}
	_, err := users.Create(ctx, admin, in)
	require.NoError(t, err)

	_, err = users.Create(ctx, admin, in)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email_taken", ce.Reason)
}

func TestUserSyncMatchesSubjectThenEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := crm.NewUsers(f.st, f.dispat)
	admin := testutil.Principal(1, 1, true)

	local, err := users.Create(ctx, admin, crm.CreateUserInput{
		Email: "pia@example.com", Name: "Pia", Password: "longenough",
	})
	require.NoError(t, err)

	// first sync links the existing local account by email
	synced, err := users.Sync(ctx, admin, crm.ProviderProfile{
		Subject: "idp|abc", Email: "pia@example.com", Name: "Pia N",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, synced.ID)
	assert.Equal(t, "hosted", synced.AuthProvider)

	// later syncs match on the subject even after an address change
	synced, err = users.Sync(ctx, admin, crm.ProviderProfile{
		Subject: "idp|abc", Email: "pia.n@example.com", Name: "Pia N",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, synced.ID)
	assert.Equal(t, "pia.n@example.com", synced.Email)

	// an unseen subject creates a fresh account
	fresh, err := users.Sync(ctx, admin, crm.ProviderProfile{
		Subject: "idp|xyz", Email: "new@example.com", Name: "New",
	})
	require.NoError(t, err)
	assert.NotEqual(t, local.ID, fresh.ID)
}

func TestInviteRedeemOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := crm.NewUsers(f.st, f.dispat)
	admin := testutil.Principal(1, 1, true)

	role := &models.Role{OrgID: 1, Name: "Agent", Slug: "agent"}
	require.NoError(t, f.db.Create(role).Error)

	invite, err := users.Invite(ctx, admin, crm.InviteInput{
		Email: "nils@example.com", TTLMinutes: 60, RoleID: &role.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, invite.Token)

	u, err := users.Redeem(ctx, crm.RedeemInput{Token: invite.Token, Name: "Nils", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "nils@example.com", u.Email)
	assert.Equal(t, models.UserActive, u.Status)

	var links []models.UserRole
	require.NoError(t, f.db.Where("user_id = ?", u.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, role.ID, links[0].RoleID)

	_, err = users.Redeem(ctx, crm.RedeemInput{Token: invite.Token, Name: "Again", Password: "longenough"})
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "invite_used", ce.Reason)
}
