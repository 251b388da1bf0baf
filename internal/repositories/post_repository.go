package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/anonto42/gamematch/backend/internal/models"
)

// FeedQuery filters candidate posts. Zero values disable a filter.
type FeedQuery struct {
	// AuthorIDs restricts posts to these authors when non-nil. An empty,
	// non-nil slice matches nothing.
	AuthorIDs []uint
	// ExcludeAuthorIDs drops posts by these authors.
	ExcludeAuthorIDs []uint
	// ExcludeEngagedBy drops posts this user liked or marked bad.
	ExcludeEngagedBy uint
	Since            *time.Time
	Until            *time.Time
	// Text is matched case-insensitively against title and body.
	Text string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error
	IncrementLikeCount(ctx context.Context, id uint, delta int) error
	GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, int64, error)
	GetPostsLikedBy(ctx context.Context, userID uint, offset, limit int) ([]models.Post, int64, error)
	CountFeed(ctx context.Context, q FeedQuery) (int64, error)
	FindFeed(ctx context.Context, q FeedQuery, offset, limit int) ([]models.Post, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID loads the post with its author.
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementLikeCount adds delta in SQL so concurrent updates never overwrite each other.
func (r *PostgresPostRepository) IncrementLikeCount(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	err := db.Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// GetPostsLikedBy lists posts liked by userID, most recent like first.
func (r *PostgresPostRepository) GetPostsLikedBy(ctx context.Context, userID uint, offset, limit int) ([]models.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Like{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	err := db.Preload("Author").
		Joins("JOIN likes ON likes.post_id = posts.id AND likes.user_id = ?", userID).
		Order("likes.created_at DESC, likes.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostgresPostRepository) CountFeed(ctx context.Context, q FeedQuery) (int64, error) {
	var total int64
	err := r.feedScope(r.db.WithContext(ctx).Model(&models.Post{}), q).Count(&total).Error
	return total, err
}

// FindFeed returns matching posts newest first; ties are broken by id.
func (r *PostgresPostRepository) FindFeed(ctx context.Context, q FeedQuery, offset, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if limit <= 0 {
		return posts, nil
	}
	err := r.feedScope(r.db.WithContext(ctx).Preload("Author"), q).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) feedScope(db *gorm.DB, q FeedQuery) *gorm.DB {
	if q.AuthorIDs != nil {
		if len(q.AuthorIDs) == 0 {
			return db.Where("1 = 0")
		}
		db = db.Where("posts.user_id IN ?", q.AuthorIDs)
	}
	if len(q.ExcludeAuthorIDs) > 0 {
		db = db.Where("posts.user_id NOT IN ?", q.ExcludeAuthorIDs)
	}
	if q.ExcludeEngagedBy != 0 {
		sub := r.db.Session(&gorm.Session{NewDB: true})
		db = db.Where("posts.id NOT IN (?)",
			sub.Model(&models.Like{}).Select("post_id").Where("user_id = ?", q.ExcludeEngagedBy),
		).Where("posts.id NOT IN (?)",
			sub.Model(&models.Bad{}).Select("post_id").Where("user_id = ?", q.ExcludeEngagedBy),
		)
	}
	if q.Since != nil {
		db = db.Where("posts.created_at >= ?", *q.Since)
	}
	if q.Until != nil {
		db = db.Where("posts.created_at <= ?", *q.Until)
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		db = db.Where(`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.body) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	return db
}

// likeEscaper makes LIKE wildcards in search text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
