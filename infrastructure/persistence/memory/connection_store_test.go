package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/infrastructure/persistence/memory"
	pkgerrors "teamcal-backend/pkg/errors"
)

func newConnection(connectionID string, userID valueobjects.UserID) ports.Connection {
	now := time.Now().UTC()
	return ports.Connection{
		ConnectionID: connectionID,
		UserID:       userID.String(),
		ConnectedAt:  now,
		TTL:          now.Add(24 * time.Hour).Unix(),
	}
}

func TestConnectionStore_FindByUserReturnsOnlyTheirConnections(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConnectionStore()
	alice := valueobjects.NewUserID()
	bob := valueobjects.NewUserID()

	require.NoError(t, store.Save(ctx, newConnection("conn-a1", alice)))
	require.NoError(t, store.Save(ctx, newConnection("conn-a2", alice)))
	require.NoError(t, store.Save(ctx, newConnection("conn-b1", bob)))

	conns, err := store.FindByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	for _, conn := range conns {
		assert.Equal(t, alice.String(), conn.UserID)
	}
}

func TestConnectionStore_ReconnectOverwritesRegistration(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConnectionStore()
	first := valueobjects.NewUserID()
	second := valueobjects.NewUserID()

	require.NoError(t, store.Save(ctx, newConnection("conn-1", first)))
	require.NoError(t, store.Save(ctx, newConnection("conn-1", second)))

	orphaned, err := store.FindByUser(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	conns, err := store.FindByUser(ctx, second)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "conn-1", conns[0].ConnectionID)
}

func TestConnectionStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConnectionStore()
	userID := valueobjects.NewUserID()

	require.NoError(t, store.Save(ctx, newConnection("conn-1", userID)))
	require.NoError(t, store.Delete(ctx, "conn-1"))
	require.NoError(t, store.Delete(ctx, "conn-1"))

	conns, err := store.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestConnectionStore_RejectsEmptyIdentifiers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConnectionStore()

	for _, err := range []error{
		store.Save(ctx, ports.Connection{UserID: valueobjects.NewUserID().String()}),
		store.Save(ctx, ports.Connection{ConnectionID: "conn-1"}),
		store.Delete(ctx, ""),
	} {
		var domainErr *pkgerrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "MALFORMED_IDENTIFIER", domainErr.Code)
	}
}
