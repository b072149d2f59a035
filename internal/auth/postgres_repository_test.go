package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automarket/automarket/internal/auth"
	"github.com/automarket/automarket/internal/database/dbtest"
)

func newTestAccount(name, role string) *auth.Account {
	return &auth.Account{
		Name:         name,
		Role:         role,
		ApiKeyPrefix: "am_test0",
		ApiKeyHash:   "$2a$04$abcdefghijklmnopqrstuuAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := auth.NewRepository(dbtest.Pool(t))
	ctx := context.Background()

	a := newTestAccount("alice", auth.RoleSpecialist)
	require.NoError(t, repo.Create(ctx, a))
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, auth.RoleSpecialist, got.Role)
	assert.Nil(t, got.RevokedAt)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo := auth.NewRepository(dbtest.Pool(t))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestRepository_FindByPrefixSkipsRevoked(t *testing.T) {
	repo := auth.NewRepository(dbtest.Pool(t))
	ctx := context.Background()

	active := newTestAccount("active", auth.RoleBuyer)
	revoked := newTestAccount("revoked", auth.RoleBuyer)
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, revoked))
	require.NoError(t, repo.Revoke(ctx, revoked.ID))

	found, err := repo.FindByPrefix(ctx, "am_test0")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, active.ID, found[0].ID)

	none, err := repo.FindByPrefix(ctx, "am_nope0")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_ListAndCount(t *testing.T) {
	repo := auth.NewRepository(dbtest.Pool(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestAccount("a", auth.RoleAdmin)))
	require.NoError(t, repo.Create(ctx, newTestAccount("b", auth.RoleBuyer)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepository_Revoke(t *testing.T) {
	repo := auth.NewRepository(dbtest.Pool(t))
	ctx := context.Background()

	a := newTestAccount("bob", auth.RoleBuyer)
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, repo.Revoke(ctx, a.ID))
	assert.ErrorIs(t, repo.Revoke(ctx, a.ID), auth.ErrAccountRevoked)
	assert.ErrorIs(t, repo.Revoke(ctx, uuid.New()), auth.ErrAccountNotFound)
}
