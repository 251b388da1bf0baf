package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/testutil"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewPostService(store)
	author := testutil.CreateUser(t, store, "author", "Author")

	view, err := svc.CreatePost(ctx, author, models.CreatePostRequest{Game: " Splatoon 3 ", Description: "Turf war tonight"})
	require.NoError(t, err)
	require.Equal(t, "Splatoon 3", view.Title)
	require.Equal(t, "Turf war tonight", view.Content)
	require.Equal(t, "author", view.Author.ExternalID)
	require.Zero(t, view.LikeCount)

	_, err = svc.CreatePost(ctx, author, models.CreatePostRequest{Game: "x", Description: "   "})
	require.Equal(t, errorx.InvalidInput, errorx.KindOf(err))
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	posts := NewPostService(store)
	engagement := NewEngagementService(store, &testutil.RecordingNotifier{})

	owner := testutil.CreateUser(t, store, "owner", "Owner")
	other := testutil.CreateUser(t, store, "other", "Other")
	post := testutil.CreatePost(t, store, owner, "Tarkov raid", time.Now())

	_, err := engagement.Like(ctx, other, post.ID)
	require.NoError(t, err)
	_, err = engagement.MarkBad(ctx, owner, post.ID)
	require.NoError(t, err)

	err = posts.DeletePost(ctx, other, post.ID)
	require.ErrorIs(t, err, errorx.ErrNotPostOwner)

	require.NoError(t, posts.DeletePost(ctx, owner, post.ID))

	_, err = posts.GetPost(ctx, nil, post.ID)
	require.ErrorIs(t, err, errorx.ErrPostNotFound)

	likes, err := store.Likes.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Zero(t, likes)

	marked, err := store.Bads.HasUserMarkedBad(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	require.False(t, marked)

	err = posts.DeletePost(ctx, owner, post.ID)
	require.ErrorIs(t, err, errorx.ErrPostNotFound)
}

func TestGetPostIsLiked(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	posts := NewPostService(store)
	engagement := NewEngagementService(store, &testutil.RecordingNotifier{})

	owner := testutil.CreateUser(t, store, "owner", "Owner")
	viewer := testutil.CreateUser(t, store, "viewer", "Viewer")
	post := testutil.CreatePost(t, store, owner, "Smash", time.Now())

	_, err := engagement.Like(ctx, viewer, post.ID)
	require.NoError(t, err)

	view, err := posts.GetPost(ctx, viewer, post.ID)
	require.NoError(t, err)
	require.True(t, view.IsLiked)

	view, err = posts.GetPost(ctx, owner, post.ID)
	require.NoError(t, err)
	require.False(t, view.IsLiked)
	require.Equal(t, int64(1), view.LikeCount)
}
