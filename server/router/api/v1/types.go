package v1

import (
	"github.com/hrygo/folio/server/service/tagging"
	"github.com/hrygo/folio/store"
)

type Tag struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedTs   int64  `json:"createdTs"`
	UpdatedTs   int64  `json:"updatedTs"`
}

type PopularTag struct {
	Tag
	ItemCount int `json:"itemCount"`
}

type Item struct {
	ID        int32  `json:"id"`
	Kind      string `json:"kind"`
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatorID int32  `json:"creatorId"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type Association struct {
	ID        int32  `json:"id"`
	Kind      string `json:"kind"`
	ItemID    int32  `json:"itemId"`
	TagID     int32  `json:"tagId"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`

	// Set when details are requested.
	Tag  *Tag  `json:"tag,omitempty"`
	Item *Item `json:"item,omitempty"`
}

type Count struct {
	Count int `json:"count"`
}

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateTagRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreatePostRequest struct {
	CreatorID int32  `json:"creatorId" validate:"required,gt=0"`
	Content   string `json:"content"`
}

type CreateProjectRequest struct {
	CreatorID   int32  `json:"creatorId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
}

type CreateAssociationRequest struct {
	ItemID int32 `json:"itemId" validate:"required,gt=0"`
	TagID  int32 `json:"tagId" validate:"required,gt=0"`
}

type AddMultipleTagsRequest struct {
	ItemID int32   `json:"itemId" validate:"required,gt=0"`
	TagIDs []int32 `json:"tagIds" validate:"required,min=1,max=100,dive,gt=0"`
}

func convertTagFromStore(tag *store.Tag) *Tag {
	return &Tag{
		ID:          tag.ID,
		Name:        tag.Name,
		Description: tag.Description,
		CreatedTs:   tag.CreatedTs,
		UpdatedTs:   tag.UpdatedTs,
	}
}

func convertItemFromSummary(summary *tagging.ItemSummary) *Item {
	return &Item{
		ID:        summary.ID,
		Kind:      summary.Kind.String(),
		UID:       summary.UID,
		Title:     summary.Title,
		Content:   summary.Content,
		CreatorID: summary.CreatorID,
		CreatedTs: summary.CreatedTs,
		UpdatedTs: summary.UpdatedTs,
	}
}

func convertAssociationFromStore(itemTag *store.ItemTag) *Association {
	return &Association{
		ID:        itemTag.ID,
		Kind:      itemTag.Kind.String(),
		ItemID:    itemTag.ItemID,
		TagID:     itemTag.TagID,
		CreatedTs: itemTag.CreatedTs,
		UpdatedTs: itemTag.UpdatedTs,
	}
}

func convertAssociationsFromStore(itemTags []*store.ItemTag) []*Association {
	result := make([]*Association, 0, len(itemTags))
	for _, itemTag := range itemTags {
		result = append(result, convertAssociationFromStore(itemTag))
	}
	return result
}
