package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aakar/pkg/platform/sentinel"
)

func TestInMemoryStoreListActiveOrdersByID(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Event{ID: 3, Name: "Hackathon", Active: true}))
	require.NoError(t, store.Save(ctx, Event{ID: 1, Name: "Robo Race", Active: true}))
	require.NoError(t, store.Save(ctx, Event{ID: 2, Name: "Retired", Active: false}))

	list, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, 3, list[1].ID)
}

func TestInMemoryStoreSaveOverwrites(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Event{ID: 1, Name: "Robo Race", Fee: 20000, Active: true}))
	require.NoError(t, store.Save(ctx, Event{ID: 1, Name: "Robo Race Finals", Fee: 25000, Active: true}))

	e, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Robo Race Finals", e.Name)
	assert.Equal(t, int64(25000), e.Fee)
}

func TestInMemoryStoreDeactivate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Event{ID: 1, Name: "Robo Race", Active: true}))
	require.NoError(t, store.Deactivate(ctx, 1))

	e, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, e.Active)

	assert.ErrorIs(t, store.Deactivate(ctx, 42), sentinel.ErrNotFound)
}

func TestInMemoryStoreFindMissing(t *testing.T) {
	_, err := NewInMemoryStore().FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
