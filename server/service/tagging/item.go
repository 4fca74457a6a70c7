package tagging

import (
	"context"
	"fmt"

	"github.com/hrygo/folio/plugin/markdown"
	"github.com/hrygo/folio/store"
)

// ItemSummary is the display form of a taggable item.
type ItemSummary struct {
	ID        int32
	Kind      store.ItemKind
	UID       string
	Title     string
	Content   string
	CreatorID int32
	CreatedTs int64
	UpdatedTs int64
}

// ItemKind is what the engine needs to know about one kind of taggable item.
type ItemKind interface {
	Kind() store.ItemKind
	Exists(ctx context.Context, id int32) (bool, error)
	// GetSummary returns nil when the item does not exist.
	GetSummary(ctx context.Context, id int32) (*ItemSummary, error)
	// ListSummaries returns the summaries of the items that exist, in no particular order.
	ListSummaries(ctx context.Context, ids []int32) ([]*ItemSummary, error)
}

// NewPostKind returns the ItemKind backed by the post table.
func NewPostKind(s *store.Store) ItemKind {
	return &postKind{store: s}
}

// NewProjectKind returns the ItemKind backed by the project table.
func NewProjectKind(s *store.Store) ItemKind {
	return &projectKind{store: s}
}

type postKind struct {
	store *store.Store
}

func (*postKind) Kind() store.ItemKind {
	return store.ItemKindPost
}

func (k *postKind) Exists(ctx context.Context, id int32) (bool, error) {
	summary, err := k.GetSummary(ctx, id)
	return summary != nil, err
}

func (k *postKind) GetSummary(ctx context.Context, id int32) (*ItemSummary, error) {
	post, err := k.store.GetPost(ctx, &store.FindPost{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, nil
	}
	return postSummary(post), nil
}

func (k *postKind) ListSummaries(ctx context.Context, ids []int32) ([]*ItemSummary, error) {
	if len(ids) == 0 {
		return []*ItemSummary{}, nil
	}
	posts, err := k.store.ListPosts(ctx, &store.FindPost{IDList: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	summaries := make([]*ItemSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, postSummary(post))
	}
	return summaries, nil
}

func postSummary(post *store.Post) *ItemSummary {
	return &ItemSummary{
		ID:        post.ID,
		Kind:      store.ItemKindPost,
		UID:       post.UID,
		Title:     markdown.Title(post.Content),
		Content:   post.Content,
		CreatorID: post.CreatorID,
		CreatedTs: post.CreatedTs,
		UpdatedTs: post.UpdatedTs,
	}
}

type projectKind struct {
	store *store.Store
}

func (*projectKind) Kind() store.ItemKind {
	return store.ItemKindProject
}

func (k *projectKind) Exists(ctx context.Context, id int32) (bool, error) {
	summary, err := k.GetSummary(ctx, id)
	return summary != nil, err
}

func (k *projectKind) GetSummary(ctx context.Context, id int32) (*ItemSummary, error) {
	project, err := k.store.GetProject(ctx, &store.FindProject{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, nil
	}
	return projectSummary(project), nil
}

func (k *projectKind) ListSummaries(ctx context.Context, ids []int32) ([]*ItemSummary, error) {
	if len(ids) == 0 {
		return []*ItemSummary{}, nil
	}
	projects, err := k.store.ListProjects(ctx, &store.FindProject{IDList: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	summaries := make([]*ItemSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, projectSummary(project))
	}
	return summaries, nil
}

func projectSummary(project *store.Project) *ItemSummary {
	return &ItemSummary{
		ID:        project.ID,
		Kind:      store.ItemKindProject,
		UID:       project.UID,
		Title:     project.Title,
		Content:   project.Description,
		CreatorID: project.CreatorID,
		CreatedTs: project.CreatedTs,
		UpdatedTs: project.UpdatedTs,
	}
}
