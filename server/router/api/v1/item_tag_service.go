package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/folio/server/service/tagging"
	"github.com/hrygo/folio/store"
)

// itemTagHandler serves the association routes of one item kind.
type itemTagHandler struct {
	service *APIV1Service
	kind    store.ItemKind
}

func (h *itemTagHandler) engine(c echo.Context) (*tagging.Engine, error) {
	engine, err := h.service.Tagging.Engine(h.kind)
	if err != nil {
		return nil, toHTTPError(c, err)
	}
	return engine, nil
}

// POST /api/v1/{kind}-tags
func (h *itemTagHandler) CreateAssociation(c echo.Context) error {
	var req CreateAssociationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	itemTag, err := engine.CreateAssociation(c.Request().Context(), req.ItemID, req.TagID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, convertAssociationFromStore(itemTag))
}

// POST /api/v1/{kind}-tags/bulk
func (h *itemTagHandler) AddMultipleTags(c echo.Context) error {
	var req AddMultipleTagsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	created, err := engine.AddMultipleTags(c.Request().Context(), req.ItemID, req.TagIDs)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, convertAssociationsFromStore(created))
}

// GET /api/v1/{kind}-tags?limit=&offset=
func (h *itemTagHandler) ListAssociations(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	list, err := engine.ListAssociations(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertAssociationsFromStore(list))
}

// GET /api/v1/{kind}-tags/popular?limit=N
func (h *itemTagHandler) FindPopularTags(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	popular, err := engine.FindPopularTags(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	result := make([]*PopularTag, 0, len(popular))
	for _, p := range popular {
		result = append(result, &PopularTag{Tag: *convertTagFromStore(p.Tag), ItemCount: p.ItemCount})
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/v1/{kind}-tags/:id
func (h *itemTagHandler) GetAssociation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	itemTag, err := engine.GetAssociation(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertAssociationFromStore(itemTag))
}

// DELETE /api/v1/{kind}-tags/:id
func (h *itemTagHandler) Remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	itemTag, err := engine.Remove(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertAssociationFromStore(itemTag))
}

// DELETE /api/v1/{kind}-tags/items/:itemId/tags/:tagId
func (h *itemTagHandler) RemoveAssociation(c echo.Context) error {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}
	tagID, err := pathID(c, "tagId")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	itemTag, err := engine.RemoveAssociation(c.Request().Context(), itemID, tagID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertAssociationFromStore(itemTag))
}

// GET /api/v1/{kind}-tags/items/:itemId[?withDetails=true]
func (h *itemTagHandler) FindByItem(c echo.Context) error {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}
	withDetails, err := queryBool(c, "withDetails")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if !withDetails {
		list, err := engine.FindByItem(ctx, itemID)
		if err != nil {
			return toHTTPError(c, err)
		}
		return c.JSON(http.StatusOK, convertAssociationsFromStore(list))
	}
	list, err := engine.FindByItemWithTagDetails(ctx, itemID)
	if err != nil {
		return toHTTPError(c, err)
	}
	result := make([]*Association, 0, len(list))
	for _, a := range list {
		association := convertAssociationFromStore(a.ItemTag)
		association.Tag = convertTagFromStore(a.Tag)
		result = append(result, association)
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/v1/{kind}-tags/tags/:tagId[?withDetails=true]
func (h *itemTagHandler) FindByTag(c echo.Context) error {
	tagID, err := pathID(c, "tagId")
	if err != nil {
		return err
	}
	withDetails, err := queryBool(c, "withDetails")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if !withDetails {
		list, err := engine.FindByTag(ctx, tagID)
		if err != nil {
			return toHTTPError(c, err)
		}
		return c.JSON(http.StatusOK, convertAssociationsFromStore(list))
	}
	list, err := engine.FindByTagWithItemDetails(ctx, tagID)
	if err != nil {
		return toHTTPError(c, err)
	}
	result := make([]*Association, 0, len(list))
	for _, a := range list {
		association := convertAssociationFromStore(a.ItemTag)
		association.Item = convertItemFromSummary(a.Item)
		result = append(result, association)
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/v1/{kind}-tags/items/:itemId/count
func (h *itemTagHandler) CountByItem(c echo.Context) error {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	count, err := engine.CountByItem(c.Request().Context(), itemID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, Count{Count: count})
}

// GET /api/v1/{kind}-tags/tags/:tagId/count
func (h *itemTagHandler) CountByTag(c echo.Context) error {
	tagID, err := pathID(c, "tagId")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	count, err := engine.CountByTag(c.Request().Context(), tagID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, Count{Count: count})
}

// GET /api/v1/{kind}-tags/items/:itemId/similar?limit=N
func (h *itemTagHandler) FindSimilarItems(c echo.Context) error {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	similar, err := engine.FindSimilarItems(c.Request().Context(), itemID, limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	result := make([]*Item, 0, len(similar))
	for _, item := range similar {
		result = append(result, convertItemFromSummary(item))
	}
	return c.JSON(http.StatusOK, result)
}
