package badger

import (
	"context"
	"testing"

	"forever-us/application/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "lover_app_data")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Put(ctx, "lover_app_data", []byte("first")))
	require.NoError(t, store.Put(ctx, "lover_app_data", []byte("second")))

	got, err := store.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "lover_app_data", []byte(`{"ok":true}`)))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}
