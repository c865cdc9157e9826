package cached

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/infrastructure/memory"
)

type mockBackend struct {
	mock.Mock
}

func newMockBackend(t *testing.T) *mockBackend {
	m := &mockBackend{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockBackend) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBackend) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestSlotStore_GetLoadsOnce(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend(t)
	backend.On("Get", mock.Anything, "movies").Return("{}", true, nil).Once()

	store := NewSlotStore(backend, time.Minute)
	for range 3 {
		value, found, err := store.Get(ctx, "movies")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "{}", value)
	}
}

func TestSlotStore_MissesAreCached(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend(t)
	backend.On("Get", mock.Anything, "person").Return("", false, nil).Once()

	store := NewSlotStore(backend, 0)
	for range 2 {
		_, found, err := store.Get(ctx, "person")
		require.NoError(t, err)
		require.False(t, found)
	}
}

func TestSlotStore_BackendErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend(t)
	backend.On("Get", mock.Anything, "movies").Return("", false, domain.ErrStoreUnavailable).Once()
	backend.On("Get", mock.Anything, "movies").Return("{}", true, nil).Once()

	store := NewSlotStore(backend, time.Minute)
	_, _, err := store.Get(ctx, "movies")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	value, found, err := store.Get(ctx, "movies")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "{}", value)
}

func TestSlotStore_SetWritesThrough(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend(t)
	backend.On("Set", mock.Anything, "movies", `{"1":{}}`).Return(nil).Once()

	store := NewSlotStore(backend, time.Minute)
	require.NoError(t, store.Set(ctx, "movies", `{"1":{}}`))

	value, found, err := store.Get(ctx, "movies")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"1":{}}`, value, "served from cache without a backend read")
}

func TestSlotStore_FailedSetEvicts(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend(t)
	backend.On("Get", mock.Anything, "movies").Return("old", true, nil).Twice()
	backend.On("Set", mock.Anything, "movies", "new").Return(errors.New("disk full")).Once()

	store := NewSlotStore(backend, time.Minute)
	_, _, err := store.Get(ctx, "movies")
	require.NoError(t, err)

	require.Error(t, store.Set(ctx, "movies", "new"))

	value, _, err := store.Get(ctx, "movies")
	require.NoError(t, err)
	require.Equal(t, "old", value)
}

func TestSlotStore_RemoveEvicts(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewSlotStore()
	store := NewSlotStore(backend, time.Minute)

	require.NoError(t, store.Set(ctx, "movies", "{}"))
	require.NoError(t, store.Remove(ctx, "movies"))

	_, found, err := store.Get(ctx, "movies")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Close())
	_, _, err = store.Get(ctx, "person")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
