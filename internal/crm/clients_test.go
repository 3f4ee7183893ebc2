package crm_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/apperr"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
	"estatehub/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	st      *store.Store
	dispat  *notify.Dispatcher
	clients *crm.Clients
	files   *crm.EstateFiles
	tasks   *crm.Tasks
	watches *crm.Watches
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	st := store.New(db)
	dispat := notify.NewDispatcher(db, zerolog.Nop(), nil)
	return &fixture{
		db:      db,
		st:      st,
		dispat:  dispat,
		clients: crm.NewClients(st, dispat),
		files:   crm.NewEstateFiles(st, dispat),
		tasks:   crm.NewTasks(st, dispat),
		watches: crm.NewWatches(st),
	}
}

func (f *fixture) notifications(t *testing.T, recipient int64) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", recipient).Find(&out).Error)
	return out
}

func TestClientCreateValidation(t *testing.T) {
	f := newFixture(t)
	p := testutil.Principal(1, 1, false, "clients:write")

	_, err := f.clients.Create(context.Background(), p, crm.ClientInput{Name: "  "})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = f.clients.Create(context.Background(), p, crm.ClientInput{Name: "Bo", Stage: "bogus"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "stage", ve.Field)
}

func TestClientCreateRequiresPermission(t *testing.T) {
	f := newFixture(t)
	p := testutil.Principal(1, 1, false, "clients:read")

	_, err := f.clients.Create(context.Background(), p, crm.ClientInput{Name: "Bo"})
	var pe *apperr.PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rbac.ReasonMissingPermission, pe.Reason)
}

// Two users watch a client, one unwatches, then the delete notifies
// exactly the remaining watcher exactly once.
func TestClientDeleteNotifiesRemainingWatchers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.Principal(1, 1, false, "clients:read", "clients:write")
	u1 := testutil.Principal(2, 1, false, "clients:read")
	u2 := testutil.Principal(3, 1, false, "clients:read")

	client, err := f.clients.Create(ctx, owner, crm.ClientInput{Name: "Casa Verde"})
	require.NoError(t, err)

	require.NoError(t, f.watches.Watch(ctx, u1, models.EntityClient, client.ID))
	require.NoError(t, f.watches.Watch(ctx, u2, models.EntityClient, client.ID))
	// double watch stays a single subscription
	require.NoError(t, f.watches.Watch(ctx, u2, models.EntityClient, client.ID))
	require.NoError(t, f.watches.Unwatch(ctx, u1, models.EntityClient, client.ID))

	require.NoError(t, f.clients.Delete(ctx, owner, client.ID))

	assert.Len(t, f.notifications(t, u2.UserID), 1)
	assert.Empty(t, f.notifications(t, u1.UserID))

	_, err = f.clients.Get(ctx, owner, client.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// watch rows went with the client
	ids, err := f.st.Watchers(1, models.EntityClient, client.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClientCrossOrgAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orgA := testutil.Principal(1, 1, false, "clients:read", "clients:write")
	orgB := testutil.Principal(9, 2, false, "clients:read", "clients:write")

	client, err := f.clients.Create(ctx, orgA, crm.ClientInput{Name: "Private"})
	require.NoError(t, err)

	_, err = f.clients.Get(ctx, orgB, client.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = f.clients.Delete(ctx, orgB, client.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.clients.Get(ctx, orgA, client.ID)
	assert.NoError(t, err)
}

func TestWatchUnknownEntityKind(t *testing.T) {
	f := newFixture(t)
	p := testutil.Principal(1, 1, false, "clients:read")

	err := f.watches.Watch(context.Background(), p, models.EntityConnection, 1)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "entity_type", ve.Field)
}

func TestWatchMissingEntity(t *testing.T) {
	f := newFixture(t)
	p := testutil.Principal(1, 1, false, "clients:read")

	err := f.watches.Watch(context.Background(), p, models.EntityClient, 12345)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
