package tagging

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hrygo/folio/server/internal/observability"
	"github.com/hrygo/folio/store"
)

const (
	// DefaultPopularLimit is the number of tags FindPopularTags returns when no limit is given.
	DefaultPopularLimit = 10
	// DefaultSimilarLimit is the number of items FindSimilarItems returns when no limit is given.
	DefaultSimilarLimit = 5

	// similarOverFetch is how many association rows are read per requested similar item.
	similarOverFetch = 2
)

// PopularTag is a tag ranked by the number of distinct items carrying it.
type PopularTag struct {
	*store.Tag
	ItemCount int
}

// FindPopularTags returns the tags linked to the most distinct items of the
// kind, most used first. Equal counts are ordered by tag name.
func (e *Engine) FindPopularTags(ctx context.Context, limit int) (_ []*PopularTag, err error) {
	defer e.observe("popular", time.Now(), &err)
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	limit = clampLimit(limit, MaxListLimit)

	key := fmt.Sprintf("popular:%s:%d", e.Kind(), limit)
	v, err := e.cached(ctx, "popular", key, func() (any, error) {
		return e.computePopularTags(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return clonePopularTags(v.([]*PopularTag)), nil
}

func (e *Engine) computePopularTags(ctx context.Context, limit int) ([]*PopularTag, error) {
	counts, err := e.store.ListTagCounts(ctx, &store.FindTagCount{Kind: e.Kind(), Limit: limit})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to count tags: %v", err)
	}
	tagIDs := make([]int32, 0, len(counts))
	for _, count := range counts {
		tagIDs = append(tagIDs, count.TagID)
	}
	tags, err := e.tagsByID(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*PopularTag, 0, len(counts))
	for _, count := range counts {
		if tag, ok := tags[count.TagID]; ok {
			result = append(result, &PopularTag{Tag: tag, ItemCount: count.ItemCount})
		}
	}
	return result, nil
}

// FindSimilarItems returns items of the same kind sharing at least one tag with
// itemID, most recently associated first. The item itself is never included
// and each item appears at most once. An item without tags has no similar items.
func (e *Engine) FindSimilarItems(ctx context.Context, itemID int32, limit int) (_ []*ItemSummary, err error) {
	defer e.observe("similar", time.Now(), &err)
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	limit = clampLimit(limit, MaxListLimit)

	key := fmt.Sprintf("similar:%s:%d:%d", e.Kind(), itemID, limit)
	v, err := e.cached(ctx, "similar", key, func() (any, error) {
		return e.computeSimilarItems(ctx, itemID, limit)
	})
	if err != nil {
		return nil, err
	}
	return cloneSummaries(v.([]*ItemSummary)), nil
}

func (e *Engine) computeSimilarItems(ctx context.Context, itemID int32, limit int) ([]*ItemSummary, error) {
	own, err := e.list(ctx, &store.FindItemTag{Kind: e.Kind(), ItemID: &itemID})
	if err != nil {
		return nil, err
	}
	if len(own) == 0 {
		return []*ItemSummary{}, nil
	}
	tagIDs := make([]int32, 0, len(own))
	for _, itemTag := range own {
		tagIDs = append(tagIDs, itemTag.TagID)
	}

	// Over-fetch rows since several may point at the same item.
	rowLimit := limit * similarOverFetch
	rows, err := e.list(ctx, &store.FindItemTag{
		Kind:          e.Kind(),
		TagIDList:     tagIDs,
		ExcludeItemID: &itemID,
		Limit:         &rowLimit,
	})
	if err != nil {
		return nil, err
	}
	itemIDs := make([]int32, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, row.ItemID)
	}
	itemIDs = uniqueIDs(itemIDs)
	if len(itemIDs) > limit {
		itemIDs = itemIDs[:limit]
	}

	summaries, err := e.summariesByID(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	result := make([]*ItemSummary, 0, len(itemIDs))
	for _, id := range itemIDs {
		if summary, ok := summaries[id]; ok {
			result = append(result, summary)
		}
	}
	return result, nil
}

// cached serves key from the result cache, computing it at most once across
// concurrent callers on a miss. Callers only share a computation started under
// the same generation, so a reader arriving after a mutation never receives a
// result computed before it.
func (e *Engine) cached(ctx context.Context, query, key string, compute func() (any, error)) (any, error) {
	if v, ok := e.cache.Get(ctx, key); ok {
		observability.RecordCacheLookup(e.Kind().String(), query, true)
		return v, nil
	}
	observability.RecordCacheLookup(e.Kind().String(), query, false)

	generation := e.generation.Load()
	v, err, _ := e.group.Do(fmt.Sprintf("%s@%d", key, generation), func() (any, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		// The check and the set must not interleave with invalidate.
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.generation.Load() == generation {
			e.cache.SetWithTTL(ctx, key, v, e.cacheTTL)
		}
		return v, nil
	})
	return v, err
}

// invalidate drops every cached ranking of the kind.
func (e *Engine) invalidate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation.Add(1)
	e.cache.Invalidate(ctx, fmt.Sprintf("popular:%s:*", e.Kind()))
	e.cache.Invalidate(ctx, fmt.Sprintf("similar:%s:*", e.Kind()))
}

// Cached rankings are shared; callers get their own copies.

func clonePopularTags(src []*PopularTag) []*PopularTag {
	dst := make([]*PopularTag, 0, len(src))
	for _, popular := range src {
		tag := *popular.Tag
		dst = append(dst, &PopularTag{Tag: &tag, ItemCount: popular.ItemCount})
	}
	return dst
}

func cloneSummaries(src []*ItemSummary) []*ItemSummary {
	dst := make([]*ItemSummary, 0, len(src))
	for _, summary := range src {
		s := *summary
		dst = append(dst, &s)
	}
	return dst
}
