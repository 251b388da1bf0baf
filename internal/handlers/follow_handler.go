package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// FollowHandler handles follow edges. User ids are external principal ids.
type FollowHandler struct {
	graph *services.SocialGraphService
}

func NewFollowHandler(graph *services.SocialGraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth *middleware.Auth) {
	g.POST("/follow", h.Follow, auth.Required())
	g.DELETE("/follow", h.Unfollow, auth.Required())
	g.GET("/follow/status", h.Status, auth.Required())
	g.GET("/follow/:userId", h.List)
}

// Follow toggles the follow edge to the target and reports the new state.
func (h *FollowHandler) Follow(c echo.Context) error {
	var req models.FollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	following, err := h.graph.Follow(c.Request().Context(), middleware.CurrentUser(c), req.TargetUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": following})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	var req models.FollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	count, err := h.graph.Unfollow(c.Request().Context(), middleware.CurrentUser(c), req.TargetUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *FollowHandler) Status(c echo.Context) error {
	target := c.QueryParam("targetUserId")
	if target == "" {
		return errorx.New(errorx.InvalidInput, "missing_target", "targetUserId is required")
	}

	following, err := h.graph.IsFollowing(c.Request().Context(), middleware.CurrentUser(c), target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": following})
}

// List returns the followers (default) or followees of a user.
func (h *FollowHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("userId")

	var (
		users []models.UserSummary
		err   error
	)
	switch c.QueryParam("type") {
	case "", "followers":
		users, err = h.graph.ListFollowers(ctx, userID)
	case "following":
		users, err = h.graph.ListFollowing(ctx, userID)
	default:
		return errorx.New(errorx.InvalidInput, "invalid_type", "type must be followers or following")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
