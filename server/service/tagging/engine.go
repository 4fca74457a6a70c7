package tagging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hrygo/folio/server/internal/observability"
	"github.com/hrygo/folio/store"
	"github.com/hrygo/folio/store/cache"
)

const (
	// MaxBulkTags is the maximum number of tag ids accepted by AddMultipleTags.
	MaxBulkTags = 100
	// MaxListLimit caps every caller-supplied limit.
	MaxListLimit = 100
)

// AssociationWithTag is an association together with the tag it points at.
type AssociationWithTag struct {
	*store.ItemTag
	Tag *store.Tag
}

// AssociationWithItem is an association together with the item it points at.
type AssociationWithItem struct {
	*store.ItemTag
	Item *ItemSummary
}

// Engine manages the associations between tags and the items of one kind.
// Associations of different kinds never see each other.
type Engine struct {
	store *store.Store
	items ItemKind

	cache    *cache.Cache
	cacheTTL time.Duration
	group    singleflight.Group
	// generation is bumped on every mutation; results computed under an older
	// generation are not cached. mu orders cache writes against invalidation.
	generation atomic.Uint64
	mu         sync.Mutex
}

func newEngine(s *store.Store, items ItemKind, c *cache.Cache, cacheTTL time.Duration) *Engine {
	return &Engine{
		store:    s,
		items:    items,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// Kind returns the item kind this engine manages.
func (e *Engine) Kind() store.ItemKind {
	return e.items.Kind()
}

// Items returns the item capability the engine was built with.
func (e *Engine) Items() ItemKind {
	return e.items
}

// CreateAssociation links itemID to tagID.
// A duplicate pair fails with AlreadyExists before existence is checked; a missing
// item or tag fails with NotFound.
func (e *Engine) CreateAssociation(ctx context.Context, itemID, tagID int32) (_ *store.ItemTag, err error) {
	defer e.observe("create", time.Now(), &err)
	if itemID <= 0 || tagID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid item id %d or tag id %d", itemID, tagID)
	}

	existing, err := e.store.GetItemTag(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID, TagID: &tagID})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to find association: %v", err)
	}
	if existing != nil {
		return nil, status.Errorf(codes.AlreadyExists, "association already exists")
	}
	if err := e.ensureItem(ctx, itemID); err != nil {
		return nil, err
	}
	tag, err := e.store.GetTag(ctx, &store.FindTag{ID: &tagID})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get tag: %v", err)
	}
	if tag == nil {
		return nil, status.Errorf(codes.NotFound, "tag not found")
	}

	itemTag, err := e.store.CreateItemTag(ctx, &store.ItemTag{Kind: e.Kind(), ItemID: itemID, TagID: tagID})
	if err != nil {
		// The unique constraint is authoritative when two creates race past the check above.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, status.Errorf(codes.AlreadyExists, "association already exists")
		}
		return nil, status.Errorf(codes.Internal, "failed to create association: %v", err)
	}
	e.invalidate(ctx)
	observability.RecordAssociationsCreated(e.Kind().String(), 1)
	return itemTag, nil
}

// AddMultipleTags links itemID to every tag in tagIDs and returns only the
// associations it created. Pairs that already exist are skipped, so repeating a
// call returns an empty list. Either every tag exists or nothing is written.
func (e *Engine) AddMultipleTags(ctx context.Context, itemID int32, tagIDs []int32) (_ []*store.ItemTag, err error) {
	defer e.observe("bulk_create", time.Now(), &err)
	if itemID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid item id %d", itemID)
	}
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 || len(tagIDs) > MaxBulkTags {
		return nil, status.Errorf(codes.InvalidArgument, "expected 1 to %d tag ids, got %d", MaxBulkTags, len(tagIDs))
	}
	for _, id := range tagIDs {
		if id <= 0 {
			return nil, status.Errorf(codes.InvalidArgument, "invalid tag id %d", id)
		}
	}

	if err := e.ensureItem(ctx, itemID); err != nil {
		return nil, err
	}
	tags, err := e.store.ListTags(ctx, &store.FindTag{IDList: tagIDs})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list tags: %v", err)
	}
	if len(tags) != len(tagIDs) {
		return nil, status.Errorf(codes.NotFound, "one or more tags not found")
	}

	created, err := e.store.CreateItemTags(ctx, &store.CreateItemTags{Kind: e.Kind(), ItemID: itemID, TagIDList: tagIDs})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create associations: %v", err)
	}
	if len(created) > 0 {
		e.invalidate(ctx)
		observability.RecordAssociationsCreated(e.Kind().String(), len(created))
	}
	observability.Logger(ctx).Info("tags added to item",
		slog.String(observability.LogFieldKind, e.Kind().String()),
		slog.Int("itemId", int(itemID)),
		slog.Int("requested", len(tagIDs)),
		slog.Int("created", len(created)),
	)
	return created, nil
}

// FindByItem returns the associations of itemID, newest first.
func (e *Engine) FindByItem(ctx context.Context, itemID int32) (_ []*store.ItemTag, err error) {
	defer e.observe("find_by_item", time.Now(), &err)
	return e.list(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID})
}

// FindByTag returns the associations of tagID, newest first.
func (e *Engine) FindByTag(ctx context.Context, tagID int32) (_ []*store.ItemTag, err error) {
	defer e.observe("find_by_tag", time.Now(), &err)
	return e.list(ctx, &store.FindItemTag{Kind: e.Kind(), TagID: &tagID})
}

// FindByItemWithTagDetails is FindByItem with each association's tag attached.
func (e *Engine) FindByItemWithTagDetails(ctx context.Context, itemID int32) (_ []*AssociationWithTag, err error) {
	defer e.observe("find_by_item_details", time.Now(), &err)
	itemTags, err := e.list(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID})
	if err != nil {
		return nil, err
	}
	tagIDs := make([]int32, 0, len(itemTags))
	for _, itemTag := range itemTags {
		tagIDs = append(tagIDs, itemTag.TagID)
	}
	tags, err := e.tagsByID(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*AssociationWithTag, 0, len(itemTags))
	for _, itemTag := range itemTags {
		if tag, ok := tags[itemTag.TagID]; ok {
			result = append(result, &AssociationWithTag{ItemTag: itemTag, Tag: tag})
		}
	}
	return result, nil
}

// FindByTagWithItemDetails is FindByTag with each association's item summary attached.
func (e *Engine) FindByTagWithItemDetails(ctx context.Context, tagID int32) (_ []*AssociationWithItem, err error) {
	defer e.observe("find_by_tag_details", time.Now(), &err)
	itemTags, err := e.list(ctx, &store.FindItemTag{Kind: e.Kind(), TagID: &tagID})
	if err != nil {
		return nil, err
	}
	itemIDs := make([]int32, 0, len(itemTags))
	for _, itemTag := range itemTags {
		itemIDs = append(itemIDs, itemTag.ItemID)
	}
	items, err := e.summariesByID(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*AssociationWithItem, 0, len(itemTags))
	for _, itemTag := range itemTags {
		if item, ok := items[itemTag.ItemID]; ok {
			result = append(result, &AssociationWithItem{ItemTag: itemTag, Item: item})
		}
	}
	return result, nil
}

// CountByItem returns the number of tags linked to itemID.
func (e *Engine) CountByItem(ctx context.Context, itemID int32) (_ int, err error) {
	defer e.observe("count_by_item", time.Now(), &err)
	return e.count(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID})
}

// CountByTag returns the number of items linked to tagID.
func (e *Engine) CountByTag(ctx context.Context, tagID int32) (_ int, err error) {
	defer e.observe("count_by_tag", time.Now(), &err)
	return e.count(ctx, &store.FindItemTag{Kind: e.Kind(), TagID: &tagID})
}

// GetAssociation returns the association with the given id.
func (e *Engine) GetAssociation(ctx context.Context, id int32) (_ *store.ItemTag, err error) {
	defer e.observe("get", time.Now(), &err)
	return e.get(ctx, &store.FindItemTag{Kind: e.Kind(), ID: &id})
}

// ListAssociations pages through every association of the kind, newest first.
func (e *Engine) ListAssociations(ctx context.Context, limit, offset int) (_ []*store.ItemTag, err error) {
	defer e.observe("list", time.Now(), &err)
	if offset < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid offset %d", offset)
	}
	limit = clampLimit(limit, MaxListLimit)
	return e.list(ctx, &store.FindItemTag{Kind: e.Kind(), Limit: &limit, Offset: &offset})
}

// RemoveAssociation deletes the link between itemID and tagID and returns it.
func (e *Engine) RemoveAssociation(ctx context.Context, itemID, tagID int32) (_ *store.ItemTag, err error) {
	defer e.observe("remove_pair", time.Now(), &err)
	itemTag, err := e.get(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID, TagID: &tagID})
	if err != nil {
		return nil, err
	}
	return itemTag, e.delete(ctx, itemTag)
}

// Remove deletes the association with the given id and returns it.
func (e *Engine) Remove(ctx context.Context, id int32) (_ *store.ItemTag, err error) {
	defer e.observe("remove", time.Now(), &err)
	itemTag, err := e.get(ctx, &store.FindItemTag{Kind: e.Kind(), ID: &id})
	if err != nil {
		return nil, err
	}
	return itemTag, e.delete(ctx, itemTag)
}

func (e *Engine) ensureItem(ctx context.Context, itemID int32) error {
	exists, err := e.items.Exists(ctx, itemID)
	if err != nil {
		return status.Errorf(codes.Internal, "failed to check item: %v", err)
	}
	if !exists {
		return status.Errorf(codes.NotFound, "item not found")
	}
	return nil
}

func (e *Engine) list(ctx context.Context, find *store.FindItemTag) ([]*store.ItemTag, error) {
	list, err := e.store.ListItemTags(ctx, find)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list associations: %v", err)
	}
	return list, nil
}

func (e *Engine) count(ctx context.Context, find *store.FindItemTag) (int, error) {
	count, err := e.store.CountItemTags(ctx, find)
	if err != nil {
		return 0, status.Errorf(codes.Internal, "failed to count associations: %v", err)
	}
	return count, nil
}

func (e *Engine) get(ctx context.Context, find *store.FindItemTag) (*store.ItemTag, error) {
	itemTag, err := e.store.GetItemTag(ctx, find)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get association: %v", err)
	}
	if itemTag == nil {
		return nil, status.Errorf(codes.NotFound, "association not found")
	}
	return itemTag, nil
}

func (e *Engine) delete(ctx context.Context, itemTag *store.ItemTag) error {
	if err := e.store.DeleteItemTag(ctx, &store.DeleteItemTag{Kind: e.Kind(), ID: &itemTag.ID}); err != nil {
		return status.Errorf(codes.Internal, "failed to delete association: %v", err)
	}
	e.invalidate(ctx)
	return nil
}

func (e *Engine) tagsByID(ctx context.Context, ids []int32) (map[int32]*store.Tag, error) {
	result := make(map[int32]*store.Tag, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	tags, err := e.store.ListTags(ctx, &store.FindTag{IDList: ids})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list tags: %v", err)
	}
	for _, tag := range tags {
		result[tag.ID] = tag
	}
	return result, nil
}

func (e *Engine) summariesByID(ctx context.Context, ids []int32) (map[int32]*ItemSummary, error) {
	summaries, err := e.items.ListSummaries(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list items: %v", err)
	}
	result := make(map[int32]*ItemSummary, len(summaries))
	for _, summary := range summaries {
		result[summary.ID] = summary
	}
	return result, nil
}

func (e *Engine) observe(operation string, start time.Time, err *error) {
	observability.RecordTaggingOperation(e.Kind().String(), operation, time.Since(start), *err)
}

// uniqueIDs drops repeated ids, keeping the first occurrence of each.
func uniqueIDs(ids []int32) []int32 {
	seen := make(map[int32]bool, len(ids))
	result := make([]int32, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
