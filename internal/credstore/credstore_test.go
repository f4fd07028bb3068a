package credstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotStore interface {
	Get(ctx context.Context, slot string) (string, error)
	Set(ctx context.Context, slot, value string) error
	Delete(ctx context.Context, slot string) error
	ClearAll(ctx context.Context) error
}

var allSlots = []string{"access_token", "refresh_token", "remember_token", "user"}

func runStoreContract(t *testing.T, store slotStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "access_token")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, store.Set(ctx, "access_token", "tok-1"))
	require.NoError(t, store.Set(ctx, "access_token", "tok-2"))
	got, err := store.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	require.NoError(t, store.Delete(ctx, "access_token"))
	assert.NoError(t, store.Delete(ctx, "access_token"), "deleting an absent slot must not error")

	for _, slot := range allSlots {
		require.NoError(t, store.Set(ctx, slot, "value-"+slot))
	}
	require.NoError(t, store.ClearAll(ctx))
	for _, slot := range allSlots {
		_, err := store.Get(ctx, slot)
		assert.ErrorIs(t, err, ErrSlotNotFound, "slot %s survived ClearAll", slot)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	t.Parallel()
	runStoreContract(t, NewMemory())
}

func TestSQLiteStoreContract(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(t.TempDir() + "/credentials.db")
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/credentials.db"

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "remember_token", "remember-1"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "remember_token")
	require.NoError(t, err)
	assert.Equal(t, "remember-1", got)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := OpenSQLite("")
	assert.Error(t, err)
}
