package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/apperr"
	"estatehub/internal/models"
	"estatehub/internal/store"
	"estatehub/internal/testutil"
)

func TestTenantIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db)

	client := &models.Client{OrgID: 1, OwnerID: 10, Name: "Ada Vendor"}
	require.NoError(t, st.Create(client))

	t.Run("read from another org is not found", func(t *testing.T) {
		_, err := store.First[models.Client](st, 2, client.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("update from another org is not found and changes nothing", func(t *testing.T) {
		err := store.Update[models.Client](st, 2, client.ID, map[string]any{"name": "hijacked"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		got, err := store.First[models.Client](st, 1, client.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Vendor", got.Name)
	})

	t.Run("delete from another org is not found and keeps the row", func(t *testing.T) {
		err := store.Delete[models.Client](st, 2, client.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = store.First[models.Client](st, 1, client.ID)
		assert.NoError(t, err)
	})

	t.Run("list only sees own org", func(t *testing.T) {
		require.NoError(t, st.Create(&models.Client{OrgID: 2, Name: "Other Org"}))
		mine, err := store.List[models.Client](st, 1)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, client.ID, mine[0].ID)
	})
}

func TestWatchIdempotence(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db)

	require.NoError(t, st.Watch(1, models.EntityClient, 7, 100))
	require.NoError(t, st.Watch(1, models.EntityClient, 7, 100))

	ids, err := st.Watchers(1, models.EntityClient, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, ids)

	// Unwatching someone who never watched is a quiet success.
	require.NoError(t, st.Unwatch(1, models.EntityClient, 7, 200))

	require.NoError(t, st.Unwatch(1, models.EntityClient, 7, 100))
	ids, err = st.Watchers(1, models.EntityClient, 7)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateIf(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db)

	conn := &models.Connection{OrgID: 1, ClientID: 1, UserID: 2, Status: models.ConnectionPending}
	require.NoError(t, st.Create(conn))

	rows, err := store.UpdateIf[models.Connection](st, 1, conn.ID,
		map[string]any{"status": models.ConnectionAccepted}, "status = ?", models.ConnectionPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = store.UpdateIf[models.Connection](st, 1, conn.ID,
		map[string]any{"status": models.ConnectionRejected}, "status = ?", models.ConnectionPending)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	got, err := store.First[models.Connection](st, 1, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, got.Status)
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db)

	require.NoError(t, st.Create(&models.Client{OrgID: 1, Name: "Keep Me"}))

	err := st.Transaction(func(tx *store.Store) error {
		if err := store.DeleteWhere[models.Client](tx, 1, "name = ?", "Keep Me"); err != nil {
			return err
		}
		return apperr.ErrNotFound // force rollback
	})
	assert.Error(t, err)

	n, err := store.Count[models.Client](st, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
