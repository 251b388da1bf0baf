package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/gamematch/backend/internal/models"
)

// Store groups the relational repositories that share one connection (or one
// transaction).
type Store struct {
	db   *gorm.DB
	opts []StoreOption

	Users   UserRepository
	Posts   PostRepository
	Follows FollowRepository
	Likes   LikeRepository
	Bads    BadRepository
}

// StoreOption adjusts the repositories of a Store. Options are applied again
// to every transaction-bound Store derived from it.
type StoreOption func(*Store)

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:      db,
		opts:    opts,
		Users:   NewPostgresUserRepository(db),
		Posts:   NewPostgresPostRepository(db),
		Follows: NewPostgresFollowRepository(db),
		Likes:   NewPostgresLikeRepository(db),
		Bads:    NewPostgresBadRepository(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transaction runs fn with a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise, including
// when ctx is cancelled.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.opts...))
	})
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Bad{},
		&models.Notification{},
	)
}
