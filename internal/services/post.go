package services

import (
	"context"
	"strings"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// PostService creates and removes posts.
type PostService struct {
	store *repositories.Store
}

func NewPostService(store *repositories.Store) *PostService {
	return &PostService{store: store}
}

// CreatePost stores a new invite card written by author.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, req models.CreatePostRequest) (*models.FeedPost, error) {
	title := strings.TrimSpace(req.Game)
	body := strings.TrimSpace(req.Description)
	if title == "" || body == "" {
		return nil, errorx.New(errorx.InvalidInput, "missing_fields", "game and description are required")
	}

	post := &models.Post{UserID: author.ID, Title: title, Body: body}
	if err := s.store.Posts.CreatePost(ctx, post); err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to create post")
	}
	post.Author = *author

	view := post.View(false)
	return &view, nil
}

// GetPost returns a single post as viewer sees it. viewer may be nil.
func (s *PostService) GetPost(ctx context.Context, viewer *models.User, postID uint) (*models.FeedPost, error) {
	post, err := s.store.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrPostNotFound, "failed to load post")
	}

	liked := false
	if viewer != nil {
		if liked, err = s.store.Likes.HasUserLikedPost(ctx, postID, viewer.ID); err != nil {
			return nil, errorx.Wrap(errorx.Internal, err, "failed to check like")
		}
	}

	view := post.View(liked)
	return &view, nil
}

// DeletePost removes the post and its like and bad edges in one transaction.
// Only the owner may delete a post.
func (s *PostService) DeletePost(ctx context.Context, user *models.User, postID uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return mapNotFound(err, errorx.ErrPostNotFound, "failed to load post")
		}
		if post.UserID != user.ID {
			return errorx.ErrNotPostOwner
		}

		if err := tx.Likes.DeleteLikesByPostID(ctx, postID); err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to delete likes")
		}
		if err := tx.Bads.DeleteBadsByPostID(ctx, postID); err != nil {
			return errorx.Wrap(errorx.Internal, err, "failed to delete bads")
		}
		if err := tx.Posts.DeletePost(ctx, postID); err != nil {
			return mapNotFound(err, errorx.ErrPostNotFound, "failed to delete post")
		}
		return nil
	})
}
