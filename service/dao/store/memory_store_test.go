package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/stepgate/service/dao"
)

type record struct {
	ID    string
	Value int
}

func newRecordStore() *MemoryStore[string, record] {
	return NewMemoryStore[string, record](func(r *record) string { return r.ID })
}

func TestSaveLoadDelete(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 1}))

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Value)

	missing, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Delete(ctx, "a"))
	gone, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSaveNil(t *testing.T) {
	store := newRecordStore()
	assert.ErrorIs(t, store.Save(context.Background(), nil), dao.ErrNilEntity)
}

func TestSaveOverwrites(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 1}))
	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 2}))

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Value)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMutate(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 1}))

	err := store.Mutate(ctx, "a", func(r *record) error {
		r.Value++
		return nil
	})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Value)
}

func TestMutateUnknownKey(t *testing.T) {
	store := newRecordStore()
	err := store.Mutate(context.Background(), "missing", func(r *record) error { return nil })
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestMutatePropagatesError(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &record{ID: "a"}))

	boom := fmt.Errorf("rejected")
	err := store.Mutate(ctx, "a", func(r *record) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestViewReadsUnderLock(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 1}))

	var snapshot record
	require.NoError(t, store.View(ctx, "a", func(r *record) { snapshot = *r }))
	assert.Equal(t, 1, snapshot.Value)

	assert.ErrorIs(t, store.View(ctx, "b", func(*record) {}), dao.ErrNotFound)
}

func TestRangeVisitsEveryRecord(t *testing.T) {
	store := newRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &record{ID: "a", Value: 1}))
	require.NoError(t, store.Save(ctx, &record{ID: "b", Value: 2}))

	total := 0
	require.NoError(t, store.Range(ctx, func(r *record) { total += r.Value }))
	assert.Equal(t, 3, total)
}
