package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/folio/server/service/tagging"
	"github.com/hrygo/folio/store"
)

const (
	maxFeedItems          = 50
	maxFeedDescriptionLen = 280
)

// TagFeed renders the items carrying a tag as RSS 2.0, newest association first.
// GET /api/v1/{kind}-tags/tags/:tagId/rss
func (h *itemTagHandler) TagFeed(c echo.Context) error {
	tagID, err := pathID(c, "tagId")
	if err != nil {
		return err
	}
	engine, err := h.engine(c)
	if err != nil {
		return err
	}

	var (
		tag  *store.Tag
		list []*tagging.AssociationWithItem
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		tag, err = h.service.Tagging.GetTag(ctx, tagID)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = engine.FindByTagWithItemDetails(ctx, tagID)
		return err
	})
	if err := g.Wait(); err != nil {
		return toHTTPError(c, err)
	}

	baseURL := h.baseURL(c)
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%ss tagged %s", strings.ToLower(h.kind.String()), tag.Name),
		Link:        &feeds.Link{Href: baseURL},
		Description: tag.Description,
		Created:     time.Now(),
	}
	if len(list) > maxFeedItems {
		list = list[:maxFeedItems]
	}
	for _, a := range list {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          a.Item.UID,
			Title:       a.Item.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/v1/%ss/%d", baseURL, strings.ToLower(h.kind.String()), a.Item.ID)},
			Description: truncateRunes(a.Item.Content, maxFeedDescriptionLen),
			Created:     time.Unix(a.Item.CreatedTs, 0),
			Updated:     time.Unix(a.CreatedTs, 0),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (h *itemTagHandler) baseURL(c echo.Context) string {
	if url := h.service.Profile.InstanceURL; url != "" {
		return strings.TrimSuffix(url, "/")
	}
	return c.Scheme() + "://" + c.Request().Host
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
