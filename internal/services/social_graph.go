package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// Notifier delivers a notification to target without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, target *models.User, notification *models.Notification)
}

// SocialGraphService manages follow edges.
type SocialGraphService struct {
	store    *repositories.Store
	notifier Notifier
}

func NewSocialGraphService(store *repositories.Store, notifier Notifier) *SocialGraphService {
	return &SocialGraphService{store: store, notifier: notifier}
}

// Follow toggles the edge from follower to the user with targetExternalID and
// reports whether follower follows the target afterwards. Only a newly
// created edge notifies the target.
func (s *SocialGraphService) Follow(ctx context.Context, follower *models.User, targetExternalID string) (bool, error) {
	if follower.ExternalID == targetExternalID {
		return false, errorx.ErrInvalidSelfFollow
	}

	var (
		followee  *models.User
		following bool
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		followee, err = tx.Users.GetUserByExternalID(ctx, targetExternalID)
		if err != nil {
			return mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
		}
		if followee.ID == follower.ID {
			return errorx.ErrInvalidSelfFollow
		}

		removed, err := tx.Follows.DeleteFollow(ctx, follower.ID, followee.ID)
		if err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to unfollow")
		}
		if removed > 0 {
			following = false
			return nil
		}

		err = tx.Follows.CreateFollow(ctx, &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID})
		if err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to follow")
		}
		following = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request created the same edge.
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if following {
		s.notifier.Notify(ctx, followee, newFollowNotification(follower, followee))
	}
	return following, nil
}

// Unfollow removes the edge if present and returns how many edges were removed.
func (s *SocialGraphService) Unfollow(ctx context.Context, follower *models.User, targetExternalID string) (int64, error) {
	followee, err := s.store.Users.GetUserByExternalID(ctx, targetExternalID)
	if err != nil {
		return 0, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}

	removed, err := s.store.Follows.DeleteFollow(ctx, follower.ID, followee.ID)
	if err != nil {
		return 0, errorx.Wrap(errorx.Internal, err, "failed to unfollow")
	}
	return removed, nil
}

// IsFollowing reports whether follower follows the user with targetExternalID.
func (s *SocialGraphService) IsFollowing(ctx context.Context, follower *models.User, targetExternalID string) (bool, error) {
	followee, err := s.store.Users.GetUserByExternalID(ctx, targetExternalID)
	if err != nil {
		return false, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}

	ok, err := s.store.Follows.IsFollowing(ctx, follower.ID, followee.ID)
	if err != nil {
		return false, errorx.Wrap(errorx.Internal, err, "failed to check follow")
	}
	return ok, nil
}

// ListFollowers returns the users following externalID.
func (s *SocialGraphService) ListFollowers(ctx context.Context, externalID string) ([]models.UserSummary, error) {
	user, err := s.store.Users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}

	users, err := s.store.Follows.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to list followers")
	}
	return models.Summaries(users), nil
}

// ListFollowing returns the users externalID follows.
func (s *SocialGraphService) ListFollowing(ctx context.Context, externalID string) ([]models.UserSummary, error) {
	user, err := s.store.Users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}

	users, err := s.store.Follows.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to list following")
	}
	return models.Summaries(users), nil
}

func newFollowNotification(actor, target *models.User) *models.Notification {
	return &models.Notification{
		ID:                  uuid.NewString(),
		Type:                models.NotificationFollow,
		RecipientID:         target.ID,
		RecipientExternalID: target.ExternalID,
		ActorID:             actor.ID,
		ActorExternalID:     actor.ExternalID,
		ActorName:           actor.DisplayName,
		CreatedAt:           time.Now().UTC(),
	}
}
