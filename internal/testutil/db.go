package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/config"
)

// NewDB opens a migrated sqlite database that lives for the duration of t.
// A single connection serializes writers, mirroring row locks on Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormCfg := config.GormConfig()
	gormCfg.Logger = gormlogger.Discard

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormCfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

// NewStore returns a Store over a fresh database.
func NewStore(t testing.TB) *repositories.Store {
	return repositories.NewStore(NewDB(t))
}

// CreateUser inserts a user with the given external id and display name.
func CreateUser(t testing.TB, store *repositories.Store, externalID, name string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: externalID, DisplayName: name, Email: externalID + "@example.com"}
	require.NoError(t, store.Users.CreateUser(context.Background(), u))
	return u
}

// CreatePost inserts a post by author created at the given time.
func CreatePost(t testing.TB, store *repositories.Store, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Title: title, Body: title + " body", CreatedAt: createdAt.UTC().Truncate(time.Second)}
	require.NoError(t, store.Posts.CreatePost(context.Background(), p))
	p.Author = *author
	return p
}

// Follow inserts a follow edge.
func Follow(t testing.TB, store *repositories.Store, follower, followee *models.User) {
	t.Helper()
	require.NoError(t, store.Follows.CreateFollow(context.Background(), &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}))
}

// Delivery is one call recorded by RecordingNotifier.
type Delivery struct {
	Target       models.User
	Notification models.Notification
}

// RecordingNotifier records notifications instead of delivering them.
type RecordingNotifier struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (n *RecordingNotifier) Notify(_ context.Context, target *models.User, notification *models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliveries = append(n.deliveries, Delivery{Target: *target, Notification: *notification})
}

// Deliveries returns a copy of everything recorded so far.
func (n *RecordingNotifier) Deliveries() []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Delivery(nil), n.deliveries...)
}
