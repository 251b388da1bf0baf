package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/gamematch/backend/internal/models"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, userID uint) (int64, error)
	HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
	DeleteLikesByPostID(ctx context.Context, postID uint) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike returns the number of removed rows.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetLikedPostIDs returns the subset of postIDs liked by userID.
func (r *PostgresLikeRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	liked := []uint{}
	if userID == 0 || len(postIDs) == 0 {
		return liked, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	return liked, err
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

// BadRepository stores feed rejections.
type BadRepository interface {
	CreateBad(ctx context.Context, bad *models.Bad) error
	HasUserMarkedBad(ctx context.Context, postID, userID uint) (bool, error)
	DeleteBadsByPostID(ctx context.Context, postID uint) error
}

// PostgresBadRepository implements BadRepository for PostgreSQL
type PostgresBadRepository struct {
	db *gorm.DB
}

func NewPostgresBadRepository(db *gorm.DB) *PostgresBadRepository {
	return &PostgresBadRepository{db: db}
}

func (r *PostgresBadRepository) CreateBad(ctx context.Context, bad *models.Bad) error {
	return r.db.WithContext(ctx).Create(bad).Error
}

func (r *PostgresBadRepository) HasUserMarkedBad(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bad{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresBadRepository) DeleteBadsByPostID(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Bad{}).Error
}
