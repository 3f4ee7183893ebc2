package notify_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/testutil"
)

func TestNotifySkipsActor(t *testing.T) {
	db := testutil.NewDB(t)
	d := notify.NewDispatcher(db, zerolog.Nop(), nil)

	for _, uid := range []int64{1, 2} {
		require.NoError(t, db.Create(&models.Watch{
			OrgID: 1, EntityType: models.EntityClient, EntityID: 7, UserID: uid,
		}).Error)
	}

	d.Notify(context.Background(), notify.Event{
		OrgID: 1, ActorID: 1,
		EntityType: models.EntityClient, EntityID: 7,
		Type: "client.updated", Title: "Client updated",
	})

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].RecipientID)
	assert.Equal(t, "client.updated", rows[0].Type)
}

func TestNotifyUsersWithMetadata(t *testing.T) {
	db := testutil.NewDB(t)
	d := notify.NewDispatcher(db, zerolog.Nop(), nil)

	d.NotifyUsers(context.Background(), []int64{4, 5}, notify.Event{
		OrgID: 1, ActorID: 9,
		EntityType: models.EntityEstateFile, EntityID: 3,
		Type:     "estate_file.status_changed",
		Metadata: map[string]any{"from": "draft", "to": "listed"},
	})

	var rows []models.Notification
	require.NoError(t, db.Order("recipient_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 4, rows[0].RecipientID)
	assert.JSONEq(t, `{"from":"draft","to":"listed"}`, string(rows[0].Metadata))
}

func TestFeedPushAndCancel(t *testing.T) {
	db := testutil.NewDB(t)
	feed := notify.NewFeed()
	d := notify.NewDispatcher(db, zerolog.Nop(), feed)

	ch, cancel := feed.Subscribe(8)
	d.NotifyUsers(context.Background(), []int64{8}, notify.Event{
		OrgID: 1, EntityType: models.EntityTask, EntityID: 2, Type: "task.status_changed",
	})

	select {
	case n := <-ch:
		assert.Equal(t, "task.status_changed", n.Type)
	default:
		t.Fatal("expected a pushed notification")
	}

	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}

	// pushing after cancel is a no-op
	feed.Push(8, &models.Notification{})
}

func TestDispatchFailureIsAbsorbed(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))
	d := notify.NewDispatcher(db, zerolog.Nop(), nil)

	// missing table means every insert fails; the caller must not notice
	d.NotifyUsers(context.Background(), []int64{1}, notify.Event{
		OrgID: 1, EntityType: models.EntityClient, EntityID: 1, Type: "client.updated",
	})
}
