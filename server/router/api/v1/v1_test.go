package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/server/service/tagging"
	teststore "github.com/hrygo/folio/store/test"
)

type testServer struct {
	t    *testing.T
	echo *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	taggingService := tagging.NewService(ts, tagging.Options{})
	t.Cleanup(taggingService.Close)

	e := echo.New()
	NewAPIV1Service(&profile.Profile{Mode: "dev", InstanceURL: "https://folio.test"}, ts, taggingService).RegisterRoutes(e)
	return &testServer{t: t, echo: e}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, path, body string, wantStatus int, out any) {
	s.t.Helper()
	rec := s.do(method, path, body)
	require.Equal(s.t, wantStatus, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func (s *testServer) createTag(name string) *Tag {
	tag := &Tag{}
	s.doJSON(http.MethodPost, "/api/v1/tags", fmt.Sprintf(`{"name":%q}`, name), http.StatusCreated, tag)
	return tag
}

func (s *testServer) createPost(content string) *Item {
	post := &Item{}
	s.doJSON(http.MethodPost, "/api/v1/posts", fmt.Sprintf(`{"creatorId":1,"content":%q}`, content), http.StatusCreated, post)
	return post
}

func TestTagRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tag := s.createTag("AI")
	require.Equal(t, "AI", tag.Name)

	s.doJSON(http.MethodPost, "/api/v1/tags", `{"name":"AI"}`, http.StatusConflict, nil)
	s.doJSON(http.MethodPost, "/api/v1/tags", `{"name":""}`, http.StatusBadRequest, nil)
	s.doJSON(http.MethodPost, "/api/v1/tags", fmt.Sprintf(`{"name":%q}`, strings.Repeat("x", 101)), http.StatusBadRequest, nil)

	got := &Tag{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/tags/%d", tag.ID), "", http.StatusOK, got)
	require.Equal(t, tag.ID, got.ID)

	byName := []*Tag{}
	s.doJSON(http.MethodGet, "/api/v1/tags?name=AI", "", http.StatusOK, &byName)
	require.Len(t, byName, 1)

	updated := &Tag{}
	s.doJSON(http.MethodPatch, fmt.Sprintf("/api/v1/tags/%d", tag.ID), `{"description":"machine learning"}`, http.StatusOK, updated)
	require.Equal(t, "machine learning", updated.Description)

	s.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", tag.ID), "", http.StatusNoContent, nil)
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/tags/%d", tag.ID), "", http.StatusNotFound, nil)
	s.doJSON(http.MethodGet, "/api/v1/tags/abc", "", http.StatusBadRequest, nil)
}

func TestAssociationRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ai := s.createTag("AI")
	p1, p2 := s.createPost("# P1"), s.createPost("# P2")

	created := &Association{}
	s.doJSON(http.MethodPost, "/api/v1/post-tags", fmt.Sprintf(`{"itemId":%d,"tagId":%d}`, p1.ID, ai.ID), http.StatusCreated, created)
	require.Equal(t, "POST", created.Kind)

	s.doJSON(http.MethodPost, "/api/v1/post-tags", fmt.Sprintf(`{"itemId":%d,"tagId":%d}`, p1.ID, ai.ID), http.StatusConflict, nil)
	s.doJSON(http.MethodPost, "/api/v1/post-tags", fmt.Sprintf(`{"itemId":999,"tagId":%d}`, ai.ID), http.StatusNotFound, nil)
	s.doJSON(http.MethodPost, "/api/v1/post-tags", `{"itemId":0,"tagId":1}`, http.StatusBadRequest, nil)

	bulk := []*Association{}
	s.doJSON(http.MethodPost, "/api/v1/post-tags/bulk", fmt.Sprintf(`{"itemId":%d,"tagIds":[%d]}`, p2.ID, ai.ID), http.StatusCreated, &bulk)
	require.Len(t, bulk, 1)
	s.doJSON(http.MethodPost, "/api/v1/post-tags/bulk", fmt.Sprintf(`{"itemId":%d,"tagIds":[%d]}`, p2.ID, ai.ID), http.StatusCreated, &bulk)
	require.Empty(t, bulk)
	s.doJSON(http.MethodPost, "/api/v1/post-tags/bulk", fmt.Sprintf(`{"itemId":%d,"tagIds":[%d,999]}`, p2.ID, ai.ID), http.StatusNotFound, nil)
	s.doJSON(http.MethodPost, "/api/v1/post-tags/bulk", fmt.Sprintf(`{"itemId":%d,"tagIds":[]}`, p2.ID), http.StatusBadRequest, nil)

	count := &Count{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/tags/%d/count", ai.ID), "", http.StatusOK, count)
	require.Equal(t, 2, count.Count)
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/items/%d/count", p1.ID), "", http.StatusOK, count)
	require.Equal(t, 1, count.Count)

	similar := []*Item{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/items/%d/similar", p1.ID), "", http.StatusOK, &similar)
	require.Len(t, similar, 1)
	require.Equal(t, p2.ID, similar[0].ID)
	require.Equal(t, "P2", similar[0].Title)

	popular := []*PopularTag{}
	s.doJSON(http.MethodGet, "/api/v1/post-tags/popular?limit=1", "", http.StatusOK, &popular)
	require.Len(t, popular, 1)
	require.Equal(t, "AI", popular[0].Name)
	require.Equal(t, 2, popular[0].ItemCount)
	s.doJSON(http.MethodGet, "/api/v1/post-tags/popular?limit=x", "", http.StatusBadRequest, nil)

	// Projects do not see post associations.
	s.doJSON(http.MethodGet, "/api/v1/project-tags/popular", "", http.StatusOK, &popular)
	require.Empty(t, popular)

	details := []*Association{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/tags/%d?withDetails=true", ai.ID), "", http.StatusOK, &details)
	require.Len(t, details, 2)
	require.NotNil(t, details[0].Item)
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/items/%d?withDetails=true", p1.ID), "", http.StatusOK, &details)
	require.Len(t, details, 1)
	require.Equal(t, "AI", details[0].Tag.Name)

	page := []*Association{}
	s.doJSON(http.MethodGet, "/api/v1/post-tags?limit=1", "", http.StatusOK, &page)
	require.Len(t, page, 1)

	s.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/post-tags/items/%d/tags/%d", p1.ID, ai.ID), "", http.StatusOK, nil)
	s.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/post-tags/items/%d/tags/%d", p1.ID, ai.ID), "", http.StatusNotFound, nil)
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/%d", created.ID), "", http.StatusNotFound, nil)

	removed := &Association{}
	s.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/post-tags/%d", onlyAssociationID(t, s, p2.ID)), "", http.StatusOK, removed)
	require.Equal(t, p2.ID, removed.ItemID)
}

// onlyAssociationID returns the id of the only association of itemID.
func onlyAssociationID(t *testing.T, s *testServer, itemID int32) int32 {
	t.Helper()
	list := []*Association{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/items/%d", itemID), "", http.StatusOK, &list)
	require.Len(t, list, 1)
	return list[0].ID
}

func TestItemRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	project := &Item{}
	s.doJSON(http.MethodPost, "/api/v1/projects", `{"creatorId":2,"title":"folio","description":"tags"}`, http.StatusCreated, project)
	require.Equal(t, "PROJECT", project.Kind)
	s.doJSON(http.MethodPost, "/api/v1/projects", `{"creatorId":2}`, http.StatusBadRequest, nil)

	got := &Item{}
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", project.ID), "", http.StatusOK, got)
	require.Equal(t, "folio", got.Title)

	s.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", project.ID), "", http.StatusNoContent, nil)
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", project.ID), "", http.StatusNotFound, nil)
}

func TestTagFeed(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ai := s.createTag("AI")
	post := s.createPost("# Training small models\nbody")
	s.doJSON(http.MethodPost, "/api/v1/post-tags", fmt.Sprintf(`{"itemId":%d,"tagId":%d}`, post.ID, ai.ID), http.StatusCreated, nil)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/v1/post-tags/tags/%d/rss", ai.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")
	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "posts tagged AI")
	assert.Contains(t, body, "Training small models")
	assert.Contains(t, body, fmt.Sprintf("https://folio.test/api/v1/posts/%d", post.ID))

	rec = s.do(http.MethodGet, "/api/v1/post-tags/tags/999/rss", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
