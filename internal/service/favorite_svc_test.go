package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve2482/simspeedserver/internal/repository"
)

// memFavorites mirrors FavoriteRepo: per-user lists in insertion order plus
// per-channel counters.
type memFavorites struct {
	mu       sync.Mutex
	counters map[string]int
	lists    map[string][]string
	err      error
}

func newMemFavorites(channels ...string) *memFavorites {
	m := &memFavorites{counters: map[string]int{}, lists: map[string][]string{}}
	for _, c := range channels {
		m.counters[c] = 0
	}
	return m
}

func (m *memFavorites) Add(ctx context.Context, userID, channelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.counters[channelName]; !ok {
		return repository.ErrNotFound
	}
	m.counters[channelName]++
	m.lists[userID] = append(m.lists[userID], channelName)
	return nil
}

func (m *memFavorites) Remove(ctx context.Context, userID, channelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.counters[channelName]; !ok {
		return false, repository.ErrNotFound
	}
	list := m.lists[userID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == channelName {
			m.lists[userID] = append(list[:i:i], list[i+1:]...)
			m.counters[channelName]--
			return true, nil
		}
	}
	return false, nil
}

func (m *memFavorites) ListByUser(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]string{}, m.lists[userID]...)
	return out, nil
}

func TestFavoriteService_AddAndRemove(t *testing.T) {
	store := newMemFavorites("alpha", "beta")
	svc := NewFavoriteService(store, nopLogger())
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, "u1", "alpha"))
	require.NoError(t, svc.AddFavorite(ctx, "u1", "beta"))
	assert.Equal(t, 1, store.counters["alpha"])

	favs, err := svc.Favorites(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, favs)

	require.NoError(t, svc.RemoveFavorite(ctx, "u1", "alpha"))
	assert.Equal(t, 0, store.counters["alpha"])

	favs, err = svc.Favorites(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, favs)
}

func TestFavoriteService_DuplicateAddCountsTwice(t *testing.T) {
	store := newMemFavorites("alpha")
	svc := NewFavoriteService(store, nopLogger())
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, "u1", "alpha"))
	require.NoError(t, svc.AddFavorite(ctx, "u1", "alpha"))
	assert.Equal(t, 2, store.counters["alpha"])

	require.NoError(t, svc.RemoveFavorite(ctx, "u1", "alpha"))
	assert.Equal(t, 1, store.counters["alpha"])
	favs, _ := svc.Favorites(ctx, "u1")
	assert.Equal(t, []string{"alpha"}, favs)
}

func TestFavoriteService_RemoveAbsentIsNoop(t *testing.T) {
	store := newMemFavorites("alpha")
	store.counters["alpha"] = 5
	svc := NewFavoriteService(store, nopLogger())

	require.NoError(t, svc.RemoveFavorite(context.Background(), "u1", "alpha"))
	assert.Equal(t, 5, store.counters["alpha"])
}

func TestFavoriteService_UnknownChannel(t *testing.T) {
	svc := NewFavoriteService(newMemFavorites("alpha"), nopLogger())
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddFavorite(ctx, "u1", "ghost"), ErrChannelNotFound)
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, "u1", "ghost"), ErrChannelNotFound)
}

func TestFavoriteService_StoreFailure(t *testing.T) {
	store := newMemFavorites("alpha")
	boom := errors.New("tx aborted")
	store.err = boom
	svc := NewFavoriteService(store, nopLogger())

	err := svc.AddFavorite(context.Background(), "u1", "alpha")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrChannelNotFound)
}
