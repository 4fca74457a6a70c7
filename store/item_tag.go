package store

import "context"

// ItemTag associates one item of Kind with one tag.
// The pair (ItemID, TagID) is unique within a kind.
type ItemTag struct {
	ID        int32
	Kind      ItemKind
	ItemID    int32
	TagID     int32
	CreatedTs int64
	UpdatedTs int64
}

// FindItemTag is the find condition for item tags.
// Results are ordered by created_ts DESC, id DESC.
type FindItemTag struct {
	Kind ItemKind

	ID            *int32
	ItemID        *int32
	TagID         *int32
	TagIDList     []int32
	ExcludeItemID *int32

	Limit  *int
	Offset *int
}

type DeleteItemTag struct {
	Kind ItemKind

	ID     *int32
	ItemID *int32
	TagID  *int32
}

// CreateItemTags is a batch insert of tags for one item.
type CreateItemTags struct {
	Kind      ItemKind
	ItemID    int32
	TagIDList []int32
}

// FindTagCount is the find condition for per-tag association counts.
type FindTagCount struct {
	Kind  ItemKind
	Limit int
}

// TagCount is the number of distinct items of a kind linked to a tag.
type TagCount struct {
	TagID     int32
	ItemCount int
}

// CreateItemTag inserts one association. It returns ErrDuplicate when the pair already exists.
func (s *Store) CreateItemTag(ctx context.Context, create *ItemTag) (*ItemTag, error) {
	return s.driver.CreateItemTag(ctx, create)
}

// CreateItemTags inserts the given pairs in one transaction, skipping pairs that
// already exist, and returns only the inserted rows in input order.
func (s *Store) CreateItemTags(ctx context.Context, create *CreateItemTags) ([]*ItemTag, error) {
	return s.driver.CreateItemTags(ctx, create)
}

func (s *Store) ListItemTags(ctx context.Context, find *FindItemTag) ([]*ItemTag, error) {
	return s.driver.ListItemTags(ctx, find)
}

func (s *Store) GetItemTag(ctx context.Context, find *FindItemTag) (*ItemTag, error) {
	list, err := s.driver.ListItemTags(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) CountItemTags(ctx context.Context, find *FindItemTag) (int, error) {
	return s.driver.CountItemTags(ctx, find)
}

func (s *Store) DeleteItemTag(ctx context.Context, delete *DeleteItemTag) error {
	return s.driver.DeleteItemTag(ctx, delete)
}

// ListTagCounts returns tags ranked by distinct item count, ties broken by tag name.
func (s *Store) ListTagCounts(ctx context.Context, find *FindTagCount) ([]*TagCount, error) {
	return s.driver.ListTagCounts(ctx, find)
}
