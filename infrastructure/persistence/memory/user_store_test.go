package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/infrastructure/persistence/memory"
	pkgerrors "teamcal-backend/pkg/errors"
)

func newUser(t *testing.T, email string) *entities.User {
	t.Helper()

	addr, err := valueobjects.NewEmail(email)
	require.NoError(t, err)
	user, err := entities.NewUser(addr, "Avery Chen")
	require.NoError(t, err)
	return user
}

func TestUserStore_CreateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	require.NoError(t, store.Create(ctx, newUser(t, "avery@example.com")))
	err := store.Create(ctx, newUser(t, "avery@example.com"))

	assert.ErrorIs(t, err, pkgerrors.ErrEmailTaken)
}

func TestUserStore_CreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "avery@example.com")

	require.NoError(t, store.Create(ctx, user))
	require.NoError(t, user.ChangeEmail(mustEmail(t, "avery+alt@example.com")))
	err := store.Create(ctx, user)

	assert.ErrorIs(t, err, pkgerrors.ErrUserExists)
}

func TestUserStore_UpdateMovesEmailIndex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "old@example.com")
	require.NoError(t, store.Create(ctx, user))

	require.NoError(t, user.ChangeEmail(mustEmail(t, "new@example.com")))
	require.NoError(t, store.Update(ctx, user))

	byOld, err := store.FindByEmail(ctx, mustEmail(t, "old@example.com"))
	require.NoError(t, err)
	assert.Nil(t, byOld)

	byNew, err := store.FindByEmail(ctx, mustEmail(t, "new@example.com"))
	require.NoError(t, err)
	require.NotNil(t, byNew)
	assert.True(t, byNew.ID().Equals(user.ID()))

	// The freed address is usable again
	assert.NoError(t, store.Create(ctx, newUser(t, "old@example.com")))
}

func TestUserStore_DeleteMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	err := store.Delete(ctx, valueobjects.NewUserID())

	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestUserStore_FindAbsentReturnsNil(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	user, err := store.FindByID(ctx, valueobjects.NewUserID())
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = store.FindByEmail(ctx, mustEmail(t, "nobody@example.com"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func mustEmail(t *testing.T, raw string) valueobjects.Email {
	t.Helper()
	email, err := valueobjects.NewEmail(raw)
	require.NoError(t, err)
	return email
}
