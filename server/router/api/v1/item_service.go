package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// POST /api/v1/posts
func (s *APIV1Service) CreatePost(c echo.Context) error {
	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := s.Tagging.CreatePost(c.Request().Context(), req.CreatorID, req.Content)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, convertItemFromSummary(post))
}

// POST /api/v1/projects
func (s *APIV1Service) CreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := s.Tagging.CreateProject(c.Request().Context(), req.CreatorID, req.Title, req.Description)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, convertItemFromSummary(project))
}

// GET /api/v1/{kind}s/:id
func (h *itemTagHandler) GetItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.service.Tagging.GetItem(c.Request().Context(), h.kind, id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, convertItemFromSummary(item))
}

// DELETE /api/v1/{kind}s/:id
func (h *itemTagHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Tagging.DeleteItem(c.Request().Context(), h.kind, id); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
