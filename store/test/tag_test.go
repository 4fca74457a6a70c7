package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/store"
)

func TestTagStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "AI", Description: "machine learning"})
	require.NoError(t, err)
	require.NotZero(t, tag.ID)
	require.NotZero(t, tag.CreatedTs)

	got, err := ts.GetTag(ctx, &store.FindTag{ID: &tag.ID})
	require.NoError(t, err)
	require.Equal(t, "AI", got.Name)

	name := "ML"
	updated, err := ts.UpdateTag(ctx, &store.UpdateTag{ID: tag.ID, Name: &name})
	require.NoError(t, err)
	require.Equal(t, "ML", updated.Name)
	require.Equal(t, "machine learning", updated.Description)

	// The cached entry follows the update.
	got, err = ts.GetTag(ctx, &store.FindTag{ID: &tag.ID})
	require.NoError(t, err)
	require.Equal(t, "ML", got.Name)

	// Callers cannot reach into the cache through returned tags.
	got.Name = "changed"
	updated.Description = "changed"
	got, err = ts.GetTag(ctx, &store.FindTag{ID: &tag.ID})
	require.NoError(t, err)
	require.Equal(t, "ML", got.Name)
	require.Equal(t, "machine learning", got.Description)

	require.NoError(t, ts.DeleteTag(ctx, &store.DeleteTag{ID: tag.ID}))
	got, err = ts.GetTag(ctx, &store.FindTag{ID: &tag.ID})
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, ts.DeleteTag(ctx, &store.DeleteTag{ID: tag.ID}), store.ErrNotFound)
}

func TestTagStoreDuplicateName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.CreateTag(ctx, &store.Tag{Name: "Go"})
	require.NoError(t, err)
	_, err = ts.CreateTag(ctx, &store.Tag{Name: "Go"})
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func TestTagStoreList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	ids := []int32{}
	for _, name := range []string{"c", "a", "b"} {
		tag, err := ts.CreateTag(ctx, &store.Tag{Name: name})
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}

	list, err := ts.ListTags(ctx, &store.FindTag{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{list[0].Name, list[1].Name, list[2].Name})

	list, err = ts.ListTags(ctx, &store.FindTag{IDList: ids[:2]})
	require.NoError(t, err)
	require.Len(t, list, 2)

	limit, offset := 1, 1
	list, err = ts.ListTags(ctx, &store.FindTag{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "b", list[0].Name)
}
