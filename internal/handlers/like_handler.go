package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/services"
)

// LikeHandler handles likes and bads on posts.
type LikeHandler struct {
	engagement *services.EngagementService
	feed       *services.FeedService
}

func NewLikeHandler(engagement *services.EngagementService, feed *services.FeedService) *LikeHandler {
	return &LikeHandler{engagement: engagement, feed: feed}
}

// RegisterLikeRoutes registers like and bad routes. All of them require a user.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, auth *middleware.Auth) {
	likes := g.Group("/likes", auth.Required())
	likes.POST("", h.LikePost)
	likes.DELETE("", h.UnlikePost)
	likes.GET("", h.GetLikedPosts)

	g.POST("/bads", h.MarkBad, auth.Required())
}

func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.PostRefRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.engagement.Like(c.Request().Context(), middleware.CurrentUser(c), req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

func (h *LikeHandler) UnlikePost(c echo.Context) error {
	var req models.PostRefRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.engagement.Unlike(c.Request().Context(), middleware.CurrentUser(c), req.PostID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLikedPosts lists the posts the caller liked, most recent like first.
func (h *LikeHandler) GetLikedPosts(c echo.Context) error {
	page, err := h.feed.ListLiked(c.Request().Context(), middleware.CurrentUser(c), pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": page})
}

func (h *LikeHandler) MarkBad(c echo.Context) error {
	var req models.PostRefRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	bad, err := h.engagement.MarkBad(c.Request().Context(), middleware.CurrentUser(c), req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": bad})
}
