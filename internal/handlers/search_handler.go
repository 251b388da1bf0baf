package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

const dateOnly = "2006-01-02"

// SearchHandler serves the filtered feed.
type SearchHandler struct {
	feed *services.FeedService
}

func NewSearchHandler(feed *services.FeedService) *SearchHandler {
	return &SearchHandler{feed: feed}
}

func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group, auth *middleware.Auth) {
	g.GET("/search", h.Search, auth.Optional())
}

func (h *SearchHandler) Search(c echo.Context) error {
	filter, err := parseFeedFilter(c)
	if err != nil {
		return err
	}

	page, err := h.feed.ComposeFeed(c.Request().Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func parseFeedFilter(c echo.Context) (services.FeedFilter, error) {
	f := services.FeedFilter{
		Text: strings.TrimSpace(c.QueryParam("q")),
		Page: pageParam(c),
	}

	var err error
	if f.StartDate, err = parseDate(c.QueryParam("startDate"), false); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(c.QueryParam("endDate"), true); err != nil {
		return f, err
	}

	if raw := c.QueryParam("followedOnly"); raw != "" {
		f.FollowedOnly, err = strconv.ParseBool(raw)
		if err != nil {
			return f, errorx.Wrap(errorx.InvalidInput, err, "followedOnly must be a boolean")
		}
	}
	return f, nil
}

// parseDate accepts RFC3339 or YYYY-MM-DD. A bare end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, errorx.Wrap(errorx.InvalidInput, err, "dates must be RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	return &t, nil
}
