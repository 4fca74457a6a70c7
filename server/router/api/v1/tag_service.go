package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CreateTag creates a tag.
// POST /api/v1/tags
func (s *APIV1Service) CreateTag(c echo.Context) error {
	var req CreateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	tag, err := s.Tagging.CreateTag(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, convertTagFromStore(tag))
}

// ListTags lists tags by name, or returns the single tag matching ?name=.
// GET /api/v1/tags
func (s *APIV1Service) ListTags(c echo.Context) error {
	ctx := c.Request().Context()
	if name := c.QueryParam("name"); name != "" {
		tag, err := s.Tagging.FindTagByName(ctx, name)
		if err != nil {
			return toHTTPError(c, err)
		}
		return c.JSON(http.StatusOK, []*Tag{convertTagFromStore(tag)})
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	tags, err := s.Tagging.ListTags(ctx, limit, offset)
	if err != nil {
		return toHTTPError(c, err)
	}
	result := make([]*Tag, 0, len(tags))
	for _, tag := range tags {
		result = append(result, convertTagFromStore(tag))
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/v1/tags/:id
func (s *APIV1Service) GetTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tag, err := s.Tagging.GetTag(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertTagFromStore(tag))
}

// PATCH /api/v1/tags/:id
func (s *APIV1Service) UpdateTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	tag, err := s.Tagging.UpdateTag(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertTagFromStore(tag))
}

// DeleteTag deletes a tag and, through the foreign keys, all of its associations.
// DELETE /api/v1/tags/:id
func (s *APIV1Service) DeleteTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.Tagging.DeleteTag(c.Request().Context(), id); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
