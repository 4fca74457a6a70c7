package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// SystemSetting model related methods.
	UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error)
	ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error)

	// Tag model related methods.
	CreateTag(ctx context.Context, create *Tag) (*Tag, error)
	ListTags(ctx context.Context, find *FindTag) ([]*Tag, error)
	UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error)
	DeleteTag(ctx context.Context, delete *DeleteTag) error

	// Post model related methods.
	CreatePost(ctx context.Context, create *Post) (*Post, error)
	ListPosts(ctx context.Context, find *FindPost) ([]*Post, error)
	DeletePost(ctx context.Context, delete *DeletePost) error

	// Project model related methods.
	CreateProject(ctx context.Context, create *Project) (*Project, error)
	ListProjects(ctx context.Context, find *FindProject) ([]*Project, error)
	DeleteProject(ctx context.Context, delete *DeleteProject) error

	// ItemTag model related methods.
	CreateItemTag(ctx context.Context, create *ItemTag) (*ItemTag, error)
	CreateItemTags(ctx context.Context, create *CreateItemTags) ([]*ItemTag, error)
	ListItemTags(ctx context.Context, find *FindItemTag) ([]*ItemTag, error)
	CountItemTags(ctx context.Context, find *FindItemTag) (int, error)
	DeleteItemTag(ctx context.Context, delete *DeleteItemTag) error
	ListTagCounts(ctx context.Context, find *FindTagCount) ([]*TagCount, error)
}
