package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// UserHandler serves public profiles and the caller's own profile.
type UserHandler struct {
	identity *services.IdentityService
	profiles *services.ProfileService
	feed     *services.FeedService
}

func NewUserHandler(identity *services.IdentityService, profiles *services.ProfileService, feed *services.FeedService) *UserHandler {
	return &UserHandler{identity: identity, profiles: profiles, feed: feed}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group, auth *middleware.Auth) {
	g.GET("/user/:id", h.GetUser)
	g.GET("/user/:id/posts", h.GetUserPosts, auth.Optional())

	g.GET("/profile", h.GetProfile, auth.Required())
	g.PUT("/profile", h.UpdateProfile, auth.Required())
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.identity.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetUserPosts(c echo.Context) error {
	page, err := h.feed.ListByAuthor(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c), pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": page})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.identity.GetOwnProfile(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// UpdateProfile accepts multipart/form-data with optional displayName,
// statusMessage and avatar fields. Absent fields are left unchanged.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return errorx.Wrap(errorx.InvalidInput, err, "invalid form data")
	}

	var req models.UpdateProfileRequest
	if v, ok := params["displayName"]; ok && len(v) > 0 {
		req.DisplayName = &v[0]
	}
	if v, ok := params["statusMessage"]; ok && len(v) > 0 {
		req.StatusMessage = &v[0]
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	avatar, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		avatar, err = nil, nil
	}
	if err != nil {
		return errorx.Wrap(errorx.InvalidInput, err, "invalid avatar upload")
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), middleware.CurrentUser(c), req, avatar)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}
