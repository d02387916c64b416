package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akuznetsov/shopbot/internal/repository"
	"github.com/akuznetsov/shopbot/internal/service"
)

func newTestRepo(t *testing.T) *repository.SQLiteRepository {
	t.Helper()

	repo, err := repository.NewSQLiteRepository(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, repo.Close()) })

	require.NoError(t, repo.Seed(context.Background()))
	return repo
}

func TestCartAddUnknownProduct(t *testing.T) {
	cart := service.NewCart(newTestRepo(t))

	err := cart.Add(context.Background(), 7, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	view, err := cart.View(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestCartViewTotals(t *testing.T) {
	cart := service.NewCart(newTestRepo(t))
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 7, 1))
	require.NoError(t, cart.Add(ctx, 7, 1))
	require.NoError(t, cart.Add(ctx, 7, 3))

	view, err := cart.View(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	assert.Equal(t, "iPhone 15", view.Lines[0].ProductName)
	assert.Equal(t, int64(2), view.Lines[0].Quantity)
	assert.Equal(t, int64(17998000), view.Lines[0].Subtotal())
	assert.Equal(t, "MacBook Air M2", view.Lines[1].ProductName)
	assert.Equal(t, int64(1), view.Lines[1].Quantity)
	assert.Equal(t, int64(29997000), view.Total)
}

func TestCartClear(t *testing.T) {
	cart := service.NewCart(newTestRepo(t))
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 7, 1))
	require.NoError(t, cart.Clear(ctx, 7))

	view, err := cart.View(ctx, 7)
	require.NoError(t, err)
	assert.True(t, view.Empty())
	assert.Zero(t, view.Total)

	// Корзины других пользователей не затрагиваются.
	require.NoError(t, cart.Add(ctx, 8, 1))
	require.NoError(t, cart.Clear(ctx, 7))
	other, err := cart.View(ctx, 8)
	require.NoError(t, err)
	assert.False(t, other.Empty())
}

func TestCartViewIsolatedByUser(t *testing.T) {
	cart := service.NewCart(newTestRepo(t))
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 7, 1))
	require.NoError(t, cart.Add(ctx, 8, 3))

	view, err := cart.View(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "iPhone 15", view.Lines[0].ProductName)
}
