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

// EngagementService records likes and bads. A like and its counter update
// always commit together.
type EngagementService struct {
	store    *repositories.Store
	notifier Notifier
}

func NewEngagementService(store *repositories.Store, notifier Notifier) *EngagementService {
	return &EngagementService{store: store, notifier: notifier}
}

// Like adds user's like to the post and returns the post as user now sees it.
// The owner is notified after commit unless they liked their own post.
func (s *EngagementService) Like(ctx context.Context, user *models.User, postID uint) (*models.FeedPost, error) {
	var post *models.Post
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Posts.GetPostByID(ctx, postID); err != nil {
			return mapNotFound(err, errorx.ErrPostNotFound, "failed to load post")
		}

		liked, err := tx.Likes.HasUserLikedPost(ctx, postID, user.ID)
		if err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to check like")
		}
		if liked {
			return errorx.ErrAlreadyLiked
		}

		if err := tx.Likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: user.ID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errorx.ErrAlreadyLiked
			}
			return errorx.Wrap(errorx.Internal, err, "failed to like post")
		}
		if err := tx.Posts.IncrementLikeCount(ctx, postID, 1); err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to update like count")
		}

		post, err = tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to reload post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if post.UserID != user.ID {
		s.notifier.Notify(ctx, &post.Author, newLikeNotification(user, post))
	}

	view := post.View(true)
	return &view, nil
}

// Unlike removes user's like from the post.
func (s *EngagementService) Unlike(ctx context.Context, user *models.User, postID uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		removed, err := tx.Likes.DeleteLike(ctx, postID, user.ID)
		if err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to unlike post")
		}
		if removed == 0 {
			return errorx.ErrLikeNotFound
		}
		if err := tx.Posts.IncrementLikeCount(ctx, postID, -1); err != nil {
			return mapNotFound(err, errorx.ErrPostNotFound, "failed to update like count")
		}
		return nil
	})
}

// MarkBad hides the post from user's feed. It does not touch the like count.
func (s *EngagementService) MarkBad(ctx context.Context, user *models.User, postID uint) (*models.Bad, error) {
	if _, err := s.store.Posts.GetPostByID(ctx, postID); err != nil {
		return nil, mapNotFound(err, errorx.ErrPostNotFound, "failed to load post")
	}

	marked, err := s.store.Bads.HasUserMarkedBad(ctx, postID, user.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to check bad")
	}
	if marked {
		return nil, errorx.ErrAlreadyMarkedBad
	}

	bad := &models.Bad{PostID: postID, UserID: user.ID}
	if err := s.store.Bads.CreateBad(ctx, bad); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.ErrAlreadyMarkedBad
		}
		return nil, errorx.Wrap(errorx.Internal, err, "failed to mark post")
	}
	return bad, nil
}

func newLikeNotification(actor *models.User, post *models.Post) *models.Notification {
	return &models.Notification{
		ID:                  uuid.NewString(),
		Type:                models.NotificationLike,
		RecipientID:         post.UserID,
		RecipientExternalID: post.Author.ExternalID,
		ActorID:             actor.ID,
		ActorExternalID:     actor.ExternalID,
		ActorName:           actor.DisplayName,
		PostID:              post.ID,
		PostTitle:           post.Title,
		CreatedAt:           time.Now().UTC(),
	}
}
