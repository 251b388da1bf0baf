package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/internal/testutil"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

type FeedSuite struct {
	suite.Suite

	ctx   context.Context
	store *repositories.Store
	feed  *FeedService
	now   time.Time

	viewer *models.User
	bob    *models.User
	carol  *models.User
}

func TestFeedSuite(t *testing.T) {
	suite.Run(t, new(FeedSuite))
}

func (s *FeedSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.now = time.Now().UTC().Truncate(time.Second)

	s.feed = NewFeedService(s.store, FeedConfig{Window: 720 * time.Hour, PageSize: 10, FollowPriority: true})
	s.feed.now = func() time.Time { return s.now }

	s.viewer = testutil.CreateUser(s.T(), s.store, "viewer", "Viewer")
	s.bob = testutil.CreateUser(s.T(), s.store, "bob", "Bob")
	s.carol = testutil.CreateUser(s.T(), s.store, "carol", "Carol")
}

func (s *FeedSuite) post(author *models.User, title string, age time.Duration) *models.Post {
	return testutil.CreatePost(s.T(), s.store, author, title, s.now.Add(-age))
}

func (s *FeedSuite) titles(page *models.FeedPage) []string {
	out := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		out = append(out, p.Title)
	}
	return out
}

func (s *FeedSuite) TestFollowedAuthorsComeFirst() {
	testutil.Follow(s.T(), s.store, s.viewer, s.bob)
	s.post(s.carol, "carol newer", time.Minute)
	s.post(s.bob, "Looking for teammates", time.Hour)
	s.post(s.carol, "carol older", 2*time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"Looking for teammates", "carol newer", "carol older"}, s.titles(page))
	s.Equal(int64(3), page.Total)
	s.Equal(1, page.TotalPages)
	s.Equal("bob", page.Posts[0].Author.ExternalID)
}

func (s *FeedSuite) TestEquallyRecentFollowedPostWins() {
	testutil.Follow(s.T(), s.store, s.viewer, s.bob)
	s.post(s.carol, "carol", time.Hour)
	s.post(s.bob, "bob", time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"bob", "carol"}, s.titles(page))
}

func (s *FeedSuite) TestOwnPostsAreExcluded() {
	s.post(s.viewer, "mine", time.Minute)
	s.post(s.carol, "theirs", time.Minute)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"theirs"}, s.titles(page))
}

func (s *FeedSuite) TestLikedAndBadPostsAreExcluded() {
	engagement := NewEngagementService(s.store, &testutil.RecordingNotifier{})
	liked := s.post(s.carol, "liked", time.Minute)
	rejected := s.post(s.bob, "rejected", 2*time.Minute)
	s.post(s.bob, "fresh", 3*time.Minute)

	_, err := engagement.Like(s.ctx, s.viewer, liked.ID)
	s.Require().NoError(err)
	_, err = engagement.MarkBad(s.ctx, s.viewer, rejected.ID)
	s.Require().NoError(err)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"fresh"}, s.titles(page))
	s.False(page.Posts[0].IsLiked)

	// Other viewers are unaffected.
	page, err = s.feed.ComposeFeed(s.ctx, s.carol, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"rejected", "fresh"}, s.titles(page))
}

func (s *FeedSuite) TestAnonymousSeesEverything() {
	engagement := NewEngagementService(s.store, &testutil.RecordingNotifier{})
	p := s.post(s.carol, "carol", time.Minute)
	s.post(s.viewer, "viewer", 2*time.Minute)
	_, err := engagement.Like(s.ctx, s.viewer, p.ID)
	s.Require().NoError(err)
	_, err = engagement.MarkBad(s.ctx, s.bob, p.ID)
	s.Require().NoError(err)

	page, err := s.feed.ComposeFeed(s.ctx, nil, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"carol", "viewer"}, s.titles(page))
	for _, post := range page.Posts {
		s.False(post.IsLiked)
	}
	s.Equal(int64(1), page.Posts[0].LikeCount)
}

func (s *FeedSuite) TestPagination() {
	for i := 0; i < 25; i++ {
		s.post(s.carol, fmt.Sprintf("post %02d", i), time.Duration(i)*time.Minute)
	}

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{Page: 3})
	s.Require().NoError(err)
	s.Equal(int64(25), page.Total)
	s.Equal(3, page.TotalPages)
	s.Equal(3, page.CurrentPage)
	s.Len(page.Posts, 5)
	s.Equal("post 20", page.Posts[0].Title)

	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{Page: 4})
	s.Require().NoError(err)
	s.Empty(page.Posts)

	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{Page: 0})
	s.Require().NoError(err)
	s.Equal(1, page.CurrentPage)
	s.Len(page.Posts, 10)
}

func (s *FeedSuite) TestPaginationAcrossPools() {
	testutil.Follow(s.T(), s.store, s.viewer, s.bob)
	for i := 0; i < 12; i++ {
		s.post(s.bob, fmt.Sprintf("bob %02d", i), time.Duration(i)*time.Minute)
	}
	for i := 0; i < 4; i++ {
		s.post(s.carol, fmt.Sprintf("carol %02d", i), time.Duration(i)*time.Second)
	}

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{Page: 2})
	s.Require().NoError(err)
	s.Equal(int64(16), page.Total)
	s.Equal(2, page.TotalPages)
	s.Equal([]string{"bob 10", "bob 11", "carol 00", "carol 01", "carol 02", "carol 03"}, s.titles(page))
}

func (s *FeedSuite) TestWindow() {
	s.post(s.carol, "recent", 24*time.Hour)
	s.post(s.carol, "stale", 40*24*time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"recent"}, s.titles(page))

	// An explicit start date replaces the window.
	start := s.now.Add(-60 * 24 * time.Hour)
	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{StartDate: &start})
	s.Require().NoError(err)
	s.Equal([]string{"recent", "stale"}, s.titles(page))

	s.feed.cfg.Window = 0
	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Len(page.Posts, 2)
}

func (s *FeedSuite) TestFilters() {
	testutil.Follow(s.T(), s.store, s.viewer, s.bob)
	s.post(s.bob, "Apex Legends ranked", time.Hour)
	s.post(s.carol, "apex casual", 2*time.Hour)
	s.post(s.carol, "Valorant", 3*time.Hour)
	s.post(s.bob, "Minecraft", 5*time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{Text: "APEX"})
	s.Require().NoError(err)
	s.Equal([]string{"Apex Legends ranked", "apex casual"}, s.titles(page))

	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{FollowedOnly: true})
	s.Require().NoError(err)
	s.Equal([]string{"Apex Legends ranked", "Minecraft"}, s.titles(page))

	start := s.now.Add(-3 * time.Hour)
	end := s.now.Add(-2 * time.Hour)
	page, err = s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{StartDate: &start, EndDate: &end})
	s.Require().NoError(err)
	s.Equal([]string{"apex casual", "Valorant"}, s.titles(page))

	// body text matches as well
	page, err = s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: "valorant BODY"})
	s.Require().NoError(err)
	s.Equal([]string{"Valorant"}, s.titles(page))
}

func (s *FeedSuite) TestTextMatchesWildcardsLiterally() {
	s.post(s.carol, "100% win rate", time.Hour)
	s.post(s.carol, "Apex", 2*time.Hour)
	s.post(s.bob, "Valorant", 3*time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: "%"})
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)
	s.Equal([]string{"100% win rate"}, s.titles(page))

	page, err = s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: "_"})
	s.Require().NoError(err)
	s.Zero(page.Total)

	page, err = s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: "100%"})
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)

	s.post(s.bob, "co_op night", 4*time.Hour)
	page, err = s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: "_"})
	s.Require().NoError(err)
	s.Equal([]string{"co_op night"}, s.titles(page))

	page, err = s.feed.ComposeFeed(s.ctx, nil, FeedFilter{Text: `\`})
	s.Require().NoError(err)
	s.Zero(page.Total)
}

func (s *FeedSuite) TestFollowedOnlyAnonymousIsEmpty() {
	s.post(s.carol, "carol", time.Minute)

	page, err := s.feed.ComposeFeed(s.ctx, nil, FeedFilter{FollowedOnly: true})
	s.Require().NoError(err)
	s.Empty(page.Posts)
	s.Zero(page.Total)
	s.Zero(page.TotalPages)
}

func (s *FeedSuite) TestFollowedOnlyWithoutFollows() {
	s.post(s.carol, "carol", time.Minute)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{FollowedOnly: true})
	s.Require().NoError(err)
	s.Empty(page.Posts)
}

func (s *FeedSuite) TestInvalidDateRange() {
	start := s.now
	end := s.now.Add(-time.Hour)

	_, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{StartDate: &start, EndDate: &end})
	s.ErrorIs(err, errorx.ErrInvalidQuery)
}

func (s *FeedSuite) TestChronologicalWithoutFollowPriority() {
	s.feed.cfg.FollowPriority = false
	testutil.Follow(s.T(), s.store, s.viewer, s.bob)
	s.post(s.carol, "carol newer", time.Minute)
	s.post(s.bob, "bob older", time.Hour)

	page, err := s.feed.ComposeFeed(s.ctx, s.viewer, FeedFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"carol newer", "bob older"}, s.titles(page))
}

func (s *FeedSuite) TestListByAuthorAndLiked() {
	engagement := NewEngagementService(s.store, &testutil.RecordingNotifier{})
	first := s.post(s.carol, "first", 2*time.Hour)
	second := s.post(s.carol, "second", time.Hour)
	s.post(s.bob, "bob", time.Minute)

	_, err := engagement.Like(s.ctx, s.viewer, first.ID)
	s.Require().NoError(err)
	_, err = engagement.Like(s.ctx, s.viewer, second.ID)
	s.Require().NoError(err)

	page, err := s.feed.ListByAuthor(s.ctx, "carol", s.viewer, 1)
	s.Require().NoError(err)
	s.Equal([]string{"second", "first"}, s.titles(page))
	s.True(page.Posts[0].IsLiked)

	liked, err := s.feed.ListLiked(s.ctx, s.viewer, 1)
	s.Require().NoError(err)
	s.Equal([]string{"second", "first"}, s.titles(liked))
	s.Equal(int64(2), liked.Total)

	_, err = s.feed.ListByAuthor(s.ctx, "ghost", nil, 1)
	s.ErrorIs(err, errorx.ErrUserNotFound)
}
