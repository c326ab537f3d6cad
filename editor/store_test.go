package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	store, err := NewStore(4)
	require.NoError(t, err)

	d := New()
	store.Put(d)

	got, err := store.Get(d.ID())
	require.NoError(t, err)
	assert.Same(t, d, got)

	assert.True(t, store.Delete(d.ID()))
	assert.False(t, store.Delete(d.ID()))

	_, err = store.Get(d.ID())
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	a, b, c := New(), New(), New()
	store.Put(a)
	store.Put(b)
	_, _ = store.Get(a.ID())
	store.Put(c)

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(b.ID())
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = store.Get(a.ID())
	assert.NoError(t, err)
}

func TestNewStore_RejectsZeroCapacity(t *testing.T) {
	_, err := NewStore(0)
	assert.Error(t, err)
}
