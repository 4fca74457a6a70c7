package store

import (
	"context"
	"fmt"
)

// ItemKind identifies a kind of taggable content.
type ItemKind string

const (
	ItemKindPost    ItemKind = "POST"
	ItemKindProject ItemKind = "PROJECT"
)

func (k ItemKind) String() string {
	return string(k)
}

// ItemTagSchema names the tables and columns backing one kind's associations.
type ItemTagSchema struct {
	// Table holds the associations of this kind.
	Table string
	// ItemColumn is the association column referencing the item.
	ItemColumn string
	// ItemTable holds the items of this kind.
	ItemTable string
}

// TagSchema returns the association schema of k.
func (k ItemKind) TagSchema() (ItemTagSchema, error) {
	switch k {
	case ItemKindPost:
		return ItemTagSchema{Table: "post_tag", ItemColumn: "post_id", ItemTable: "post"}, nil
	case ItemKindProject:
		return ItemTagSchema{Table: "project_tag", ItemColumn: "project_id", ItemTable: "project"}, nil
	default:
		return ItemTagSchema{}, fmt.Errorf("unknown item kind %q", string(k))
	}
}

// Post is a short piece of user content.
type Post struct {
	ID        int32
	UID       string
	CreatorID int32
	Content   string
	CreatedTs int64
	UpdatedTs int64
}

type FindPost struct {
	ID        *int32
	IDList    []int32
	UID       *string
	CreatorID *int32

	Limit  *int
	Offset *int
}

type DeletePost struct {
	ID int32
}

// Project is a titled piece of user work.
type Project struct {
	ID          int32
	UID         string
	CreatorID   int32
	Title       string
	Description string
	CreatedTs   int64
	UpdatedTs   int64
}

type FindProject struct {
	ID        *int32
	IDList    []int32
	UID       *string
	CreatorID *int32

	Limit  *int
	Offset *int
}

type DeleteProject struct {
	ID int32
}

func (s *Store) CreatePost(ctx context.Context, create *Post) (*Post, error) {
	return s.driver.CreatePost(ctx, create)
}

func (s *Store) ListPosts(ctx context.Context, find *FindPost) ([]*Post, error) {
	return s.driver.ListPosts(ctx, find)
}

func (s *Store) GetPost(ctx context.Context, find *FindPost) (*Post, error) {
	list, err := s.driver.ListPosts(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeletePost deletes a post together with its tag associations.
func (s *Store) DeletePost(ctx context.Context, delete *DeletePost) error {
	return s.driver.DeletePost(ctx, delete)
}

func (s *Store) CreateProject(ctx context.Context, create *Project) (*Project, error) {
	return s.driver.CreateProject(ctx, create)
}

func (s *Store) ListProjects(ctx context.Context, find *FindProject) ([]*Project, error) {
	return s.driver.ListProjects(ctx, find)
}

func (s *Store) GetProject(ctx context.Context, find *FindProject) (*Project, error) {
	list, err := s.driver.ListProjects(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteProject deletes a project together with its tag associations.
func (s *Store) DeleteProject(ctx context.Context, delete *DeleteProject) error {
	return s.driver.DeleteProject(ctx, delete)
}
