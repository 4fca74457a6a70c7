package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/store"
)

func TestItemTagStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	post, err := ts.CreatePost(ctx, &store.Post{UID: "p1", CreatorID: 1, Content: "hello"})
	require.NoError(t, err)
	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "AI"})
	require.NoError(t, err)

	itemTag, err := ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: post.ID, TagID: tag.ID})
	require.NoError(t, err)
	require.NotZero(t, itemTag.ID)

	_, err = ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: post.ID, TagID: tag.ID})
	require.ErrorIs(t, err, store.ErrDuplicate)

	got, err := ts.GetItemTag(ctx, &store.FindItemTag{Kind: store.ItemKindPost, ItemID: &post.ID, TagID: &tag.ID})
	require.NoError(t, err)
	require.Equal(t, itemTag.ID, got.ID)
	require.Equal(t, store.ItemKindPost, got.Kind)

	// Kinds are partitioned: the same ids under PROJECT see nothing.
	count, err := ts.CountItemTags(ctx, &store.FindItemTag{Kind: store.ItemKindProject, TagID: &tag.ID})
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, ts.DeleteItemTag(ctx, &store.DeleteItemTag{Kind: store.ItemKindPost, ID: &itemTag.ID}))
	got, err = ts.GetItemTag(ctx, &store.FindItemTag{Kind: store.ItemKindPost, ID: &itemTag.ID})
	require.NoError(t, err)
	require.Nil(t, got)

	// No stale uniqueness state after removal.
	_, err = ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: post.ID, TagID: tag.ID})
	require.NoError(t, err)
}

func TestItemTagStoreBulkCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	project, err := ts.CreateProject(ctx, &store.Project{UID: "pr1", CreatorID: 1, Title: "folio"})
	require.NoError(t, err)
	tagIDs := []int32{}
	for _, name := range []string{"Go", "SQL", "Web"} {
		tag, err := ts.CreateTag(ctx, &store.Tag{Name: name})
		require.NoError(t, err)
		tagIDs = append(tagIDs, tag.ID)
	}

	_, err = ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindProject, ItemID: project.ID, TagID: tagIDs[1]})
	require.NoError(t, err)

	created, err := ts.CreateItemTags(ctx, &store.CreateItemTags{Kind: store.ItemKindProject, ItemID: project.ID, TagIDList: tagIDs})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, tagIDs[0], created[0].TagID)
	assert.Equal(t, tagIDs[2], created[1].TagID)

	count, err := ts.CountItemTags(ctx, &store.FindItemTag{Kind: store.ItemKindProject, ItemID: &project.ID})
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Re-running is a no-op.
	created, err = ts.CreateItemTags(ctx, &store.CreateItemTags{Kind: store.ItemKindProject, ItemID: project.ID, TagIDList: tagIDs})
	require.NoError(t, err)
	require.Empty(t, created)
}

func TestItemTagStoreCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	post, err := ts.CreatePost(ctx, &store.Post{UID: "p1", CreatorID: 1})
	require.NoError(t, err)
	other, err := ts.CreatePost(ctx, &store.Post{UID: "p2", CreatorID: 1})
	require.NoError(t, err)
	ai, err := ts.CreateTag(ctx, &store.Tag{Name: "AI"})
	require.NoError(t, err)
	goTag, err := ts.CreateTag(ctx, &store.Tag{Name: "Go"})
	require.NoError(t, err)

	for _, pair := range [][2]int32{{post.ID, ai.ID}, {post.ID, goTag.ID}, {other.ID, ai.ID}} {
		_, err := ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: pair[0], TagID: pair[1]})
		require.NoError(t, err)
	}

	require.NoError(t, ts.DeletePost(ctx, &store.DeletePost{ID: post.ID}))
	count, err := ts.CountItemTags(ctx, &store.FindItemTag{Kind: store.ItemKindPost, ItemID: &post.ID})
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, ts.DeleteTag(ctx, &store.DeleteTag{ID: ai.ID}))
	count, err = ts.CountItemTags(ctx, &store.FindItemTag{Kind: store.ItemKindPost})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestItemTagStoreOrderingAndExclusion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "AI"})
	require.NoError(t, err)
	postIDs := []int32{}
	for i, uid := range []string{"p1", "p2", "p3"} {
		post, err := ts.CreatePost(ctx, &store.Post{UID: uid, CreatorID: 1})
		require.NoError(t, err)
		postIDs = append(postIDs, post.ID)
		_, err = ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: post.ID, TagID: tag.ID, CreatedTs: int64(100 + i)})
		require.NoError(t, err)
	}

	list, err := ts.ListItemTags(ctx, &store.FindItemTag{
		Kind:          store.ItemKindPost,
		TagIDList:     []int32{tag.ID},
		ExcludeItemID: &postIDs[2],
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, postIDs[1], list[0].ItemID)
	require.Equal(t, postIDs[0], list[1].ItemID)
}

func TestListTagCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	tags := map[string]int32{}
	for _, name := range []string{"Go", "AI", "SQL", "Web"} {
		tag, err := ts.CreateTag(ctx, &store.Tag{Name: name})
		require.NoError(t, err)
		tags[name] = tag.ID
	}
	postIDs := []int32{}
	for _, uid := range []string{"p1", "p2", "p3"} {
		post, err := ts.CreatePost(ctx, &store.Post{UID: uid, CreatorID: 1})
		require.NoError(t, err)
		postIDs = append(postIDs, post.ID)
	}

	// AI: 3, Go: 2, SQL: 2, Web: 0.
	links := map[string][]int32{
		"AI":  postIDs,
		"Go":  postIDs[:2],
		"SQL": postIDs[1:],
	}
	for name, ids := range links {
		for _, id := range ids {
			_, err := ts.CreateItemTag(ctx, &store.ItemTag{Kind: store.ItemKindPost, ItemID: id, TagID: tags[name]})
			require.NoError(t, err)
		}
	}

	counts, err := ts.ListTagCounts(ctx, &store.FindTagCount{Kind: store.ItemKindPost, Limit: 10})
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, &store.TagCount{TagID: tags["AI"], ItemCount: 3}, counts[0])
	// Equal counts fall back to tag name.
	require.Equal(t, &store.TagCount{TagID: tags["Go"], ItemCount: 2}, counts[1])
	require.Equal(t, &store.TagCount{TagID: tags["SQL"], ItemCount: 2}, counts[2])

	counts, err = ts.ListTagCounts(ctx, &store.FindTagCount{Kind: store.ItemKindPost, Limit: 1})
	require.NoError(t, err)
	require.Len(t, counts, 1)

	counts, err = ts.ListTagCounts(ctx, &store.FindTagCount{Kind: store.ItemKindProject, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, counts)
}
