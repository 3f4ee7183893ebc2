package crm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/apperr"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/rbac"
	"estatehub/internal/testutil"
)

func seedParties(t *testing.T, f *fixture) (*models.Client, *models.User) {
	t.Helper()
	client := &models.Client{OrgID: 1, Name: "The Larsens"}
	require.NoError(t, f.db.Create(client).Error)
	agent := &models.User{OrgID: 1, Email: "agent@example.com", Name: "Agent", Status: models.UserActive}
	require.NoError(t, f.db.Create(agent).Error)
	return client, agent
}

func TestConnectionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conns := crm.NewConnections(f.st, f.dispat)

	client, agent := seedParties(t, f)
	creator := testutil.Principal(10, 1, false, "connections:manage")
	agentP := testutil.Principal(agent.ID, 1, false, "connections:manage")

	conn, err := conns.Request(ctx, creator, crm.ConnectionInput{ClientID: client.ID, UserID: agent.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Len(t, f.notifications(t, agent.ID), 1)

	decided, err := conns.Accept(ctx, agentP, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, decided.Status)
	require.NotNil(t, decided.DecidedAt)
	assert.Len(t, f.notifications(t, creator.UserID), 1)

	// a decided connection stays decided
	_, err = conns.Reject(ctx, agentP, conn.ID)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "not_pending", ce.Reason)
}

func TestConnectionDecideOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conns := crm.NewConnections(f.st, f.dispat)

	client, agent := seedParties(t, f)
	creator := testutil.Principal(10, 1, false, "connections:manage")
	stranger := testutil.Principal(11, 1, false, "connections:manage")
	admin := testutil.Principal(12, 1, true)

	conn, err := conns.Request(ctx, creator, crm.ConnectionInput{ClientID: client.ID, UserID: agent.ID})
	require.NoError(t, err)

	_, err = conns.Accept(ctx, stranger, conn.ID)
	var pe *apperr.PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rbac.ReasonNotOwner, pe.Reason)

	decided, err := conns.Reject(ctx, admin, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionRejected, decided.Status)
}

func TestConnectionRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conns := crm.NewConnections(f.st, f.dispat)

	client, agent := seedParties(t, f)
	require.NoError(t, f.db.Model(agent).Update("status", models.UserInactive).Error)
	p := testutil.Principal(10, 1, false, "connections:manage")

	var ve *apperr.ValidationError

	_, err := conns.Request(ctx, p, crm.ConnectionInput{ClientID: 999, UserID: agent.ID})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)

	_, err = conns.Request(ctx, p, crm.ConnectionInput{ClientID: client.ID, UserID: agent.ID})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "user_id", ve.Field)
}
