package community

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquidolado/aqui/internal/client/storage"
)

type fakeLister struct {
	listFn func(ctx context.Context) ([]Community, error)
}

func (f *fakeLister) ListMine(ctx context.Context) ([]Community, error) {
	return f.listFn(ctx)
}

func listerOf(lists ...[]Community) *fakeLister {
	i := 0
	return &fakeLister{listFn: func(ctx context.Context) ([]Community, error) {
		if i >= len(lists) {
			return lists[len(lists)-1], nil
		}
		out := lists[i]
		i++
		return out, nil
	}}
}

func TestRefreshKeepsValidSelection(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, listerOf([]Community{{ID: 1, Name: "Vila Clara"}, {ID: 2, Name: "Jardim Azul"}}))

	require.NoError(t, store.SetActive(ctx, 2))
	_, err := store.Refresh(ctx)
	require.NoError(t, err)

	id, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "Jardim Azul", active.Name)
}

func TestRefreshReselectsWhenActiveGone(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, listerOf(
		[]Community{{ID: 1, Name: "Vila Clara"}, {ID: 2, Name: "Jardim Azul"}},
		[]Community{{ID: 1, Name: "Vila Clara"}},
	))

	_, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SetActive(ctx, 2))

	// The active community disappears from the next refresh (left or
	// removed); selection falls back to the first entry.
	_, err = store.Refresh(ctx)
	require.NoError(t, err)

	id, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	raw, ok, err := st.Get(ctx, storage.KeyActiveCommunityID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", raw)
}

func TestRefreshClearsWhenListEmpty(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, listerOf(
		[]Community{{ID: 1, Name: "Vila Clara"}},
		nil,
	))

	_, err := store.Refresh(ctx)
	require.NoError(t, err)
	_, ok := store.ActiveID()
	require.True(t, ok)

	_, err = store.Refresh(ctx)
	require.NoError(t, err)

	_, ok = store.ActiveID()
	assert.False(t, ok)
	_, ok = store.Active()
	assert.False(t, ok)

	_, ok, err = st.Get(ctx, storage.KeyActiveCommunityID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshReturnsFetchedList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStore(),
		listerOf([]Community{{ID: 1, Name: "Vila Clara"}, {ID: 2, Name: "Jardim Azul"}}))

	list, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Vila Clara", list[0].Name)

	// First entry auto-selected when nothing was active.
	id, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestRefreshErrorLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStore(), &fakeLister{listFn: func(ctx context.Context) ([]Community, error) {
		return nil, errors.New("network down")
	}})
	require.NoError(t, store.SetActive(ctx, 5))

	_, err := store.Refresh(ctx)
	require.Error(t, err)

	id, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, int64(5), id)
}

func TestSetActiveDoesNotValidate(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, listerOf([]Community{{ID: 1}}))

	// Selecting an id the cached list has never seen is allowed: a fresh
	// join selects the community before any refresh.
	require.NoError(t, store.SetActive(ctx, 99))

	raw, ok, err := st.Get(ctx, storage.KeyActiveCommunityID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "99", raw)
}

func TestHydrateRestoresPersistedSelection(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, storage.KeyActiveCommunityID, "42"))

	store := NewStore(st, nil)
	require.NoError(t, store.Hydrate(ctx))

	id, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestHydrateDropsCorruptValue(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, storage.KeyActiveCommunityID, "not-a-number"))

	store := NewStore(st, nil)
	require.NoError(t, store.Hydrate(ctx))

	_, ok := store.ActiveID()
	assert.False(t, ok)
	_, ok, err := st.Get(ctx, storage.KeyActiveCommunityID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, listerOf([]Community{{ID: 1}}))

	_, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx))

	_, ok := store.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, store.Communities())

	_, ok, err = st.Get(ctx, storage.KeyActiveCommunityID)
	require.NoError(t, err)
	assert.False(t, ok)
}
