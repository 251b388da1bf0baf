package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/logger"
)

// IdentityService maps verified principals to internal users.
type IdentityService struct {
	store *repositories.Store
}

func NewIdentityService(store *repositories.Store) *IdentityService {
	return &IdentityService{store: store}
}

// ResolveUser returns the user bound to p, creating it on first use. An
// existing row is returned unchanged: provider claims never overwrite profile
// edits.
func (s *IdentityService) ResolveUser(ctx context.Context, p models.Principal) (*models.User, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, errorx.ErrAuthRequired
	}

	user, err := s.store.Users.GetUserByExternalID(ctx, p.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to load user")
	}

	user = &models.User{
		ExternalID:  p.ID,
		DisplayName: displayNameFor(p),
		AvatarURL:   p.Picture,
		Email:       p.Email,
	}
	err = s.store.Users.CreateUser(ctx, user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another request created the row first.
		user, err = s.store.Users.GetUserByExternalID(ctx, p.ID)
		if err != nil {
			return nil, errorx.Wrap(errorx.Internal, err, "failed to load user")
		}
		return user, nil
	}
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to create user")
	}

	l := logger.Ctx(ctx)
	l.Info().Uint(logger.FieldUserID, user.ID).Msg("user created on first sign-in")
	return user, nil
}

func displayNameFor(p models.Principal) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return truncate(name, 100)
	}
	if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
		return truncate(local, 100)
	}
	return models.GuestDisplayName
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// GetByExternalID looks a user up by external principal id.
func (s *IdentityService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.store.Users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}
	return user, nil
}

// GetProfile returns the public profile of externalID with follow counts.
func (s *IdentityService) GetProfile(ctx context.Context, externalID string) (*models.UserProfile, error) {
	user, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, user)
}

// GetOwnProfile is GetProfile plus private fields.
func (s *IdentityService) GetOwnProfile(ctx context.Context, user *models.User) (*models.OwnProfile, error) {
	profile, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.OwnProfile{UserProfile: *profile, Email: user.Email}, nil
}

func (s *IdentityService) profileOf(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	counts, err := s.store.Follows.GetCounts(ctx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to count follows")
	}
	return &models.UserProfile{
		UserSummary:  user.Summary(),
		FollowCounts: counts,
		CreatedAt:    user.CreatedAt,
	}, nil
}

// UpdateProfile applies an explicit edit and returns the stored user.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID uint, edit models.ProfileEdit) (*models.User, error) {
	updates := map[string]interface{}{}
	if edit.DisplayName != nil {
		name := strings.TrimSpace(*edit.DisplayName)
		if name == "" {
			return nil, errorx.New(errorx.InvalidInput, "invalid_display_name", "display name must not be empty")
		}
		updates["display_name"] = truncate(name, 100)
	}
	if edit.StatusMessage != nil {
		updates["status_message"] = truncate(strings.TrimSpace(*edit.StatusMessage), 280)
	}
	if edit.AvatarURL != nil {
		updates["avatar_url"] = *edit.AvatarURL
	}

	if err := s.store.Users.UpdateUser(ctx, userID, updates); err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to update user")
	}

	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}
	return user, nil
}

// mapNotFound turns gorm.ErrRecordNotFound into notFound and anything else into Internal.
func mapNotFound(err error, notFound *errorx.Error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var e *errorx.Error
	if errors.As(err, &e) {
		return e
	}
	return errorx.Wrap(errorx.Internal, err, msg)
}
