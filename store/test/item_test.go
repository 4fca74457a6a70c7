package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/store"
)

func TestPostStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	post, err := ts.CreatePost(ctx, &store.Post{UID: "post-1", CreatorID: 1, Content: "# Hello\nworld"})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	got, err := ts.GetPost(ctx, &store.FindPost{UID: &post.UID})
	require.NoError(t, err)
	require.Equal(t, post.ID, got.ID)
	require.Equal(t, "# Hello\nworld", got.Content)

	_, err = ts.CreatePost(ctx, &store.Post{UID: "post-1", CreatorID: 1})
	require.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, ts.DeletePost(ctx, &store.DeletePost{ID: post.ID}))
	got, err = ts.GetPost(ctx, &store.FindPost{ID: &post.ID})
	require.NoError(t, err)
	require.Nil(t, got)
	require.ErrorIs(t, ts.DeletePost(ctx, &store.DeletePost{ID: post.ID}), store.ErrNotFound)
}

func TestProjectStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	creatorID := int32(7)
	first, err := ts.CreateProject(ctx, &store.Project{UID: "project-1", CreatorID: creatorID, Title: "folio", CreatedTs: 100})
	require.NoError(t, err)
	second, err := ts.CreateProject(ctx, &store.Project{UID: "project-2", CreatorID: creatorID, Title: "bench", CreatedTs: 200})
	require.NoError(t, err)
	_, err = ts.CreateProject(ctx, &store.Project{UID: "project-3", CreatorID: 8, Title: "other"})
	require.NoError(t, err)

	list, err := ts.ListProjects(ctx, &store.FindProject{CreatorID: &creatorID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)

	list, err = ts.ListProjects(ctx, &store.FindProject{IDList: []int32{first.ID}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "folio", list[0].Title)

	require.NoError(t, ts.DeleteProject(ctx, &store.DeleteProject{ID: first.ID}))
	got, err := ts.GetProject(ctx, &store.FindProject{ID: &first.ID})
	require.NoError(t, err)
	require.Nil(t, got)
}
