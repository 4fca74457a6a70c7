// Package tagging links tags to posts and projects and ranks them by use.
//
// One Engine exists per item kind. Engines share a result cache but their
// associations, rankings and invalidations are partitioned by kind.
package tagging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithammer/shortuuid/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hrygo/folio/store"
	"github.com/hrygo/folio/store/cache"
)

// DefaultCacheTTL is how long rankings are cached when Options leaves CacheTTL unset.
const DefaultCacheTTL = time.Minute

// Options configures a Service.
type Options struct {
	// CacheTTL bounds the staleness of cached rankings. Mutations invalidate them earlier.
	CacheTTL time.Duration
}

// Service owns the tag, item and association operations.
type Service struct {
	store   *store.Store
	cache   *cache.Cache
	engines map[store.ItemKind]*Engine
}

// NewService builds a Service with an engine for posts and one for projects.
func NewService(s *store.Store, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	c := cache.New(cache.Config{
		DefaultTTL:      opts.CacheTTL,
		CleanupInterval: opts.CacheTTL,
		MaxItems:        1000,
	})

	service := &Service{
		store:   s,
		cache:   c,
		engines: map[store.ItemKind]*Engine{},
	}
	for _, items := range []ItemKind{NewPostKind(s), NewProjectKind(s)} {
		service.engines[items.Kind()] = newEngine(s, items, c, opts.CacheTTL)
	}
	return service
}

// Engine returns the engine of kind.
func (s *Service) Engine(kind store.ItemKind) (*Engine, error) {
	engine, ok := s.engines[kind]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown item kind %q", kind)
	}
	return engine, nil
}

// Close stops the result cache.
func (s *Service) Close() {
	s.cache.Close()
}

func (s *Service) invalidateAll(ctx context.Context) {
	for _, engine := range s.engines {
		engine.invalidate(ctx)
	}
}

// CreateTag creates a tag. Names are unique.
func (s *Service) CreateTag(ctx context.Context, name, description string) (*store.Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateTag(name, description); err != nil {
		return nil, err
	}
	tag, err := s.store.CreateTag(ctx, &store.Tag{Name: name, Description: description})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, status.Errorf(codes.AlreadyExists, "tag %q already exists", name)
		}
		return nil, status.Errorf(codes.Internal, "failed to create tag: %v", err)
	}
	return tag, nil
}

// GetTag returns the tag with the given id.
func (s *Service) GetTag(ctx context.Context, id int32) (*store.Tag, error) {
	tag, err := s.store.GetTag(ctx, &store.FindTag{ID: &id})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get tag: %v", err)
	}
	if tag == nil {
		return nil, status.Errorf(codes.NotFound, "tag not found")
	}
	return tag, nil
}

// FindTagByName returns the tag named name.
func (s *Service) FindTagByName(ctx context.Context, name string) (*store.Tag, error) {
	tag, err := s.store.GetTag(ctx, &store.FindTag{Name: &name})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get tag: %v", err)
	}
	if tag == nil {
		return nil, status.Errorf(codes.NotFound, "tag not found")
	}
	return tag, nil
}

// ListTags pages through tags ordered by name.
func (s *Service) ListTags(ctx context.Context, limit, offset int) ([]*store.Tag, error) {
	if offset < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid offset %d", offset)
	}
	limit = clampLimit(limit, MaxListLimit)
	tags, err := s.store.ListTags(ctx, &store.FindTag{Limit: &limit, Offset: &offset})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list tags: %v", err)
	}
	return tags, nil
}

// UpdateTag changes the name and/or description of a tag.
func (s *Service) UpdateTag(ctx context.Context, id int32, name, description *string) (*store.Tag, error) {
	if name == nil && description == nil {
		return nil, status.Errorf(codes.InvalidArgument, "no fields to update")
	}
	current, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	update := &store.UpdateTag{ID: id}
	newName, newDescription := current.Name, current.Description
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		update.Name, newName = &trimmed, trimmed
	}
	if description != nil {
		update.Description, newDescription = description, *description
	}
	if err := validateTag(newName, newDescription); err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	update.UpdatedTs = &now

	tag, err := s.store.UpdateTag(ctx, update)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, status.Errorf(codes.AlreadyExists, "tag %q already exists", newName)
		case errors.Is(err, store.ErrNotFound):
			return nil, status.Errorf(codes.NotFound, "tag not found")
		}
		return nil, status.Errorf(codes.Internal, "failed to update tag: %v", err)
	}
	// Rankings embed tag metadata.
	s.invalidateAll(ctx)
	return tag, nil
}

// DeleteTag deletes a tag together with its associations of every kind.
func (s *Service) DeleteTag(ctx context.Context, id int32) error {
	if err := s.store.DeleteTag(ctx, &store.DeleteTag{ID: id}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return status.Errorf(codes.NotFound, "tag not found")
		}
		return status.Errorf(codes.Internal, "failed to delete tag: %v", err)
	}
	s.invalidateAll(ctx)
	slog.Info("tag deleted", slog.Int("tagId", int(id)))
	return nil
}

func validateTag(name, description string) error {
	if name == "" {
		return status.Errorf(codes.InvalidArgument, "tag name is required")
	}
	if utf8.RuneCountInString(name) > store.TagNameMaxLength {
		return status.Errorf(codes.InvalidArgument, "tag name exceeds %d characters", store.TagNameMaxLength)
	}
	if utf8.RuneCountInString(description) > store.TagDescriptionMaxLength {
		return status.Errorf(codes.InvalidArgument, "tag description exceeds %d characters", store.TagDescriptionMaxLength)
	}
	return nil
}

// CreatePost creates a post and returns its summary.
func (s *Service) CreatePost(ctx context.Context, creatorID int32, content string) (*ItemSummary, error) {
	if creatorID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid creator id %d", creatorID)
	}
	post, err := s.store.CreatePost(ctx, &store.Post{UID: shortuuid.New(), CreatorID: creatorID, Content: content})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create post: %v", err)
	}
	return postSummary(post), nil
}

// CreateProject creates a project and returns its summary.
func (s *Service) CreateProject(ctx context.Context, creatorID int32, title, description string) (*ItemSummary, error) {
	if creatorID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid creator id %d", creatorID)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, status.Errorf(codes.InvalidArgument, "project title is required")
	}
	project, err := s.store.CreateProject(ctx, &store.Project{UID: shortuuid.New(), CreatorID: creatorID, Title: title, Description: description})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create project: %v", err)
	}
	return projectSummary(project), nil
}

// GetItem returns the summary of an item of kind.
func (s *Service) GetItem(ctx context.Context, kind store.ItemKind, id int32) (*ItemSummary, error) {
	engine, err := s.Engine(kind)
	if err != nil {
		return nil, err
	}
	summary, err := engine.Items().GetSummary(ctx, id)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get item: %v", err)
	}
	if summary == nil {
		return nil, status.Errorf(codes.NotFound, "item not found")
	}
	return summary, nil
}

// DeleteItem deletes an item of kind together with its associations.
func (s *Service) DeleteItem(ctx context.Context, kind store.ItemKind, id int32) error {
	engine, err := s.Engine(kind)
	if err != nil {
		return err
	}
	switch kind {
	case store.ItemKindPost:
		err = s.store.DeletePost(ctx, &store.DeletePost{ID: id})
	case store.ItemKindProject:
		err = s.store.DeleteProject(ctx, &store.DeleteProject{ID: id})
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return status.Errorf(codes.NotFound, "item not found")
		}
		return status.Errorf(codes.Internal, "failed to delete item: %v", err)
	}
	engine.invalidate(ctx)
	return nil
}
