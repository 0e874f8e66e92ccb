package todocli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAssignsSequentialIDs(t *testing.T) {
	store := NewStore()

	first, err := store.Add("buy milk")
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)
	require.False(t, first.Done)

	second, err := store.Add("  walk dog  ")
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)
	require.Equal(t, "walk dog", second.Title, "title should be trimmed")
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	store := NewStore()

	_, err := store.Add("   ")
	require.ErrorIs(t, err, ErrEmptyTitle)
	require.Zero(t, store.Len())
}

func TestListFilters(t *testing.T) {
	store := NewStore()

	done, err := store.Add("done item")
	require.NoError(t, err)
	_, err = store.Add("pending item")
	require.NoError(t, err)

	_, err = store.Toggle(done.ID)
	require.NoError(t, err)

	all := store.List(FilterAll)
	require.Len(t, all, 2)
	require.Equal(t, "done item", all[0].Title, "items come back in ID order")

	doneItems := store.List(FilterDone)
	require.Len(t, doneItems, 1)
	require.Equal(t, done.ID, doneItems[0].ID)

	pending := store.List(FilterPending)
	require.Len(t, pending, 1)
	require.Equal(t, "pending item", pending[0].Title)
}

func TestToggleFlipsBothWays(t *testing.T) {
	store := NewStore()

	item, err := store.Add("flip me")
	require.NoError(t, err)

	toggled, err := store.Toggle(item.ID)
	require.NoError(t, err)
	require.True(t, toggled.Done)

	toggled, err = store.Toggle(item.ID)
	require.NoError(t, err)
	require.False(t, toggled.Done)
}

func TestToggleUnknownID(t *testing.T) {
	store := NewStore()
	_, err := store.Toggle(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	store := NewStore()

	item, err := store.Add("ephemeral")
	require.NoError(t, err)

	require.NoError(t, store.Remove(item.ID))
	require.Zero(t, store.Len())
	require.ErrorIs(t, store.Remove(item.ID), ErrNotFound)
}

func TestClear(t *testing.T) {
	store := NewStore()

	_, err := store.Add("one")
	require.NoError(t, err)
	_, err = store.Add("two")
	require.NoError(t, err)

	require.Equal(t, 2, store.Clear())
	require.Zero(t, store.Len())
	require.Zero(t, store.Clear())

	// IDs keep counting after a clear.
	item, err := store.Add("three")
	require.NoError(t, err)
	require.Equal(t, 3, item.ID)
}
