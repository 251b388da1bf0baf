package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// FeedConfig tunes feed composition.
type FeedConfig struct {
	// Window bounds eligible posts to the most recent period. Zero disables it.
	Window time.Duration
	// PageSize is the number of posts per page.
	PageSize int
	// FollowPriority places followed authors ahead of everyone else.
	FollowPriority bool
}

// FeedFilter holds the optional filters of a feed or search request.
type FeedFilter struct {
	Text         string
	StartDate    *time.Time
	EndDate      *time.Time
	FollowedOnly bool
	Page         int
}

// FeedService composes per-viewer post pages.
type FeedService struct {
	store *repositories.Store
	cfg   FeedConfig
	now   func() time.Time
}

func NewFeedService(store *repositories.Store, cfg FeedConfig) *FeedService {
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	return &FeedService{store: store, cfg: cfg, now: time.Now}
}

// ComposeFeed returns one page of posts for viewer (nil for anonymous).
//
// Posts by followed authors come first, then posts by everyone else except the
// viewer, each newest first. Posts the viewer liked or marked bad are left
// out. Anonymous viewers get every post in the window.
func (s *FeedService) ComposeFeed(ctx context.Context, viewer *models.User, f FeedFilter) (*models.FeedPage, error) {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, errorx.ErrInvalidQuery
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	base := repositories.FeedQuery{Text: f.Text, Until: f.EndDate}
	switch {
	case f.StartDate != nil:
		base.Since = f.StartDate
	case s.cfg.Window > 0:
		since := s.now().UTC().Add(-s.cfg.Window)
		base.Since = &since
	}

	pools, err := s.pools(ctx, viewer, f.FollowedOnly, base)
	if err != nil {
		return nil, err
	}
	return s.paginate(ctx, viewer, pools, page)
}

// pools returns the queries whose results are concatenated, in order.
func (s *FeedService) pools(ctx context.Context, viewer *models.User, followedOnly bool, base repositories.FeedQuery) ([]repositories.FeedQuery, error) {
	if viewer == nil {
		if followedOnly {
			return nil, nil
		}
		return []repositories.FeedQuery{base}, nil
	}

	base.ExcludeEngagedBy = viewer.ID
	followed, err := s.store.Follows.GetFollowingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to load followed users")
	}
	if followed == nil {
		followed = []uint{}
	}

	followedPool := base
	followedPool.AuthorIDs = followed
	if followedOnly {
		return []repositories.FeedQuery{followedPool}, nil
	}

	if !s.cfg.FollowPriority {
		all := base
		all.ExcludeAuthorIDs = []uint{viewer.ID}
		return []repositories.FeedQuery{all}, nil
	}

	otherPool := base
	otherPool.ExcludeAuthorIDs = append(append([]uint{}, followed...), viewer.ID)
	return []repositories.FeedQuery{followedPool, otherPool}, nil
}

func (s *FeedService) paginate(ctx context.Context, viewer *models.User, pools []repositories.FeedQuery, page int) (*models.FeedPage, error) {
	size := s.cfg.PageSize
	counts := make([]int64, len(pools))

	g, gctx := errgroup.WithContext(ctx)
	for i := range pools {
		i := i
		g.Go(func() error {
			n, err := s.store.Posts.CountFeed(gctx, pools[i])
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to count posts")
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	posts := []models.Post{}
	offset := int64(page-1) * int64(size)
	remaining := size
	for i, q := range pools {
		if remaining == 0 {
			break
		}
		if offset >= counts[i] {
			offset -= counts[i]
			continue
		}
		batch, err := s.store.Posts.FindFeed(ctx, q, int(offset), remaining)
		if err != nil {
			return nil, errorx.Wrap(errorx.Internal, err, "failed to load posts")
		}
		posts = append(posts, batch...)
		remaining -= len(batch)
		offset = 0
	}

	views, err := s.views(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{
		Posts:       views,
		Total:       total,
		TotalPages:  totalPages(total, size),
		CurrentPage: page,
	}, nil
}

// ListByAuthor returns the author's posts newest first, without feed exclusions.
func (s *FeedService) ListByAuthor(ctx context.Context, authorExternalID string, viewer *models.User, page int) (*models.FeedPage, error) {
	author, err := s.store.Users.GetUserByExternalID(ctx, authorExternalID)
	if err != nil {
		return nil, mapNotFound(err, errorx.ErrUserNotFound, "failed to load user")
	}
	if page < 1 {
		page = 1
	}

	size := s.cfg.PageSize
	posts, total, err := s.store.Posts.GetPostsByUserID(ctx, author.ID, (page-1)*size, size)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to load posts")
	}

	views, err := s.views(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Posts: views, Total: total, TotalPages: totalPages(total, size), CurrentPage: page}, nil
}

// ListLiked returns the posts viewer liked, most recent like first.
func (s *FeedService) ListLiked(ctx context.Context, viewer *models.User, page int) (*models.FeedPage, error) {
	if page < 1 {
		page = 1
	}

	size := s.cfg.PageSize
	posts, total, err := s.store.Posts.GetPostsLikedBy(ctx, viewer.ID, (page-1)*size, size)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to load liked posts")
	}

	views := make([]models.FeedPost, 0, len(posts))
	for i := range posts {
		views = append(views, posts[i].View(true))
	}
	return &models.FeedPage{Posts: views, Total: total, TotalPages: totalPages(total, size), CurrentPage: page}, nil
}

// views attaches isLiked for viewer with a single lookup.
func (s *FeedService) views(ctx context.Context, viewer *models.User, posts []models.Post) ([]models.FeedPost, error) {
	liked := map[uint]bool{}
	if viewer != nil && len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}
		likedIDs, err := s.store.Likes.GetLikedPostIDs(ctx, viewer.ID, ids)
		if err != nil {
			return nil, errorx.Wrap(errorx.Internal, err, "failed to load likes")
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	views := make([]models.FeedPost, 0, len(posts))
	for i := range posts {
		views = append(views, posts[i].View(liked[posts[i].ID]))
	}
	return views, nil
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
