package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finjar/internal/cache"
	apperrors "finjar/internal/errors"
)

func newJarFixture(t *testing.T) (*fakeStore, JarService, DepositService) {
	t.Helper()
	store := newFakeStore()
	repos := store.repos()
	var noCache *cache.Client
	return store,
		NewJarService(repos.Jars, store, noCache),
		NewDepositService(repos.Deposits, store, noCache)
}

func TestJarService_CreateJar(t *testing.T) {
	store, jars, _ := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")

	jar, err := jars.CreateJar(context.Background(), owner, "Trip", decimal.NewFromInt(1000), "summer trip")
	require.NoError(t, err)

	assert.True(t, jar.CurrentAmount.IsZero())
	assert.Equal(t, float64(0), jar.Progress())
	assert.Equal(t, owner.ID, jar.UserID)
	assert.Equal(t, 1, store.activityCount(jar.ID))
}

func TestJarService_CreateJar_NegativeTarget(t *testing.T) {
	store, jars, _ := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")

	_, err := jars.CreateJar(context.Background(), owner, "Trip", decimal.NewFromInt(-5), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestJarService_UpdateJar_PartialPatch(t *testing.T) {
	store, jars, deposits := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")
	ctx := context.Background()

	jar, err := jars.CreateJar(ctx, owner, "Trip", decimal.NewFromInt(1000), "old")
	require.NoError(t, err)
	_, err = deposits.AddDeposit(ctx, owner, jar.ID, decimal.NewFromInt(250), "")
	require.NoError(t, err)

	newName := "Big Trip"
	updated, err := jars.UpdateJar(ctx, owner, jar.ID, JarPatch{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Big Trip", updated.Name)
	assert.Equal(t, "old", updated.Description)
	assert.True(t, updated.TargetAmount.Equal(decimal.NewFromInt(1000)))
	// Balance is untouched by jar patches.
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(250)))

	// A target change moves progress but never the balance.
	newTarget := decimal.NewFromInt(500)
	updated, err = jars.UpdateJar(ctx, owner, jar.ID, JarPatch{TargetAmount: &newTarget})
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, float64(50), updated.Progress())
}

func TestJarService_UpdateJar_ForeignOwner(t *testing.T) {
	store, jars, _ := newJarFixture(t)
	alice := store.addUser("Alice", "alice@example.com")
	bob := store.addUser("Bob", "bob@example.com")
	ctx := context.Background()

	jar, err := jars.CreateJar(ctx, alice, "Trip", decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	name := "hijacked"
	_, err = jars.UpdateJar(ctx, bob, jar.ID, JarPatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrJarNotFound)

	err = jars.DeleteJar(ctx, bob, jar.ID)
	assert.ErrorIs(t, err, apperrors.ErrJarNotFound)
}

func TestJarService_DeleteJar_Cascades(t *testing.T) {
	store, jars, deposits := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")
	ctx := context.Background()

	jar, err := jars.CreateJar(ctx, owner, "Trip", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	_, err = deposits.AddDeposit(ctx, owner, jar.ID, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	_, err = deposits.AddDeposit(ctx, owner, jar.ID, decimal.NewFromInt(50), "")
	require.NoError(t, err)

	require.NoError(t, jars.DeleteJar(ctx, owner, jar.ID))

	_, err = jars.GetJar(ctx, owner, jar.ID)
	assert.ErrorIs(t, err, apperrors.ErrJarNotFound)

	remaining, err := deposits.ListDeposits(ctx, owner, &jar.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, 0, store.activityCount(jar.ID))
}

func TestJarService_Recalculate_RepairsDriftIdempotently(t *testing.T) {
	store, jars, deposits := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")
	ctx := context.Background()

	jar, err := jars.CreateJar(ctx, owner, "Trip", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	_, err = deposits.AddDeposit(ctx, owner, jar.ID, decimal.NewFromInt(250), "")
	require.NoError(t, err)
	_, err = deposits.AddDeposit(ctx, owner, jar.ID, decimal.NewFromInt(150), "")
	require.NoError(t, err)

	// Simulate drift: the stored balance no longer matches the deposits.
	store.setBalance(jar.ID, decimal.NewFromInt(999))

	repaired, err := jars.Recalculate(ctx, owner, jar.ID)
	require.NoError(t, err)
	assert.True(t, repaired.CurrentAmount.Equal(decimal.NewFromInt(400)))

	again, err := jars.Recalculate(ctx, owner, jar.ID)
	require.NoError(t, err)
	assert.True(t, again.CurrentAmount.Equal(repaired.CurrentAmount))
}

// A user with no jars gets a list, not null.
func TestJarService_ListJars_EmptyIsNotNull(t *testing.T) {
	store, jars, _ := newJarFixture(t)
	owner := store.addUser("Alice", "alice@example.com")

	list, err := jars.ListJars(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, list)

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
