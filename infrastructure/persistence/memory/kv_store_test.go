package memory

import (
	"context"
	"testing"

	"forever-us/application/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	_, err := store.Get(ctx, "lover_app_data")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	value := []byte(`{"a":1}`)
	require.NoError(t, store.Put(ctx, "lover_app_data", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	got[0] = 'Y'
	again, err := store.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))

	require.NoError(t, store.Put(ctx, "lover_app_data", []byte("2")))
	got, err = store.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	assert.NoError(t, store.Close())
}

func TestKVStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewKVStore()
	assert.ErrorIs(t, store.Put(ctx, "k", []byte("v")), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
