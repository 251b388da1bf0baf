package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, feed *services.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth *middleware.Auth) {
	g.GET("/posts", h.GetFeed, auth.Optional())
	g.POST("/posts", h.CreatePost, auth.Required())
	g.GET("/posts/:id", h.GetPost, auth.Optional())
	g.DELETE("/posts/:id", h.DeletePost, auth.Required())
}

// GetFeed returns one page of the viewer's feed as a bare array.
func (h *PostHandler) GetFeed(c echo.Context) error {
	page, err := h.feed.ComposeFeed(c.Request().Context(), middleware.CurrentUser(c), services.FeedFilter{Page: pageParam(c)})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page.Posts)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DeletePost removes the caller's own post together with its likes and bads.
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
