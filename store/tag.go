package store

import (
	"context"
	"fmt"
)

const (
	// TagNameMaxLength is the maximum length of a tag name.
	TagNameMaxLength = 100
	// TagDescriptionMaxLength is the maximum length of a tag description.
	TagDescriptionMaxLength = 500
)

// Tag is a named label that items can be associated with.
type Tag struct {
	ID          int32
	Name        string
	Description string
	CreatedTs   int64
	UpdatedTs   int64
}

type FindTag struct {
	ID     *int32
	IDList []int32
	Name   *string

	Limit  *int
	Offset *int
}

type UpdateTag struct {
	ID          int32
	UpdatedTs   *int64
	Name        *string
	Description *string
}

type DeleteTag struct {
	ID int32
}

func (s *Store) CreateTag(ctx context.Context, create *Tag) (*Tag, error) {
	tag, err := s.driver.CreateTag(ctx, create)
	if err != nil {
		return nil, err
	}
	s.tagCache.Set(ctx, tagCacheKey(tag.ID), cloneTag(tag))
	return tag, nil
}

func (s *Store) ListTags(ctx context.Context, find *FindTag) ([]*Tag, error) {
	list, err := s.driver.ListTags(ctx, find)
	if err != nil {
		return nil, err
	}
	for _, tag := range list {
		s.tagCache.Set(ctx, tagCacheKey(tag.ID), cloneTag(tag))
	}
	return list, nil
}

// GetTag returns the first tag matching find, or nil when there is none.
func (s *Store) GetTag(ctx context.Context, find *FindTag) (*Tag, error) {
	if find.ID != nil && find.Name == nil {
		if cached, ok := s.tagCache.Get(ctx, tagCacheKey(*find.ID)); ok {
			return cloneTag(cached.(*Tag)), nil
		}
	}

	list, err := s.ListTags(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error) {
	tag, err := s.driver.UpdateTag(ctx, update)
	if err != nil {
		return nil, err
	}
	s.tagCache.Set(ctx, tagCacheKey(tag.ID), cloneTag(tag))
	return tag, nil
}

func (s *Store) DeleteTag(ctx context.Context, delete *DeleteTag) error {
	if err := s.driver.DeleteTag(ctx, delete); err != nil {
		return err
	}
	s.tagCache.Delete(ctx, tagCacheKey(delete.ID))
	return nil
}

// cloneTag keeps cached tags private to the cache.
func cloneTag(tag *Tag) *Tag {
	clone := *tag
	return &clone
}

func tagCacheKey(id int32) string {
	return fmt.Sprintf("tag:%d", id)
}
