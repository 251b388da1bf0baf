package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"not null;uniqueIndex:idx_like_post_user"`
	UserID    uint      `json:"userId" gorm:"not null;index;uniqueIndex:idx_like_post_user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bad records that a user rejected a post. It only hides the post from that user's feed.
type Bad struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"not null;uniqueIndex:idx_bad_post_user"`
	UserID    uint      `json:"userId" gorm:"not null;index;uniqueIndex:idx_bad_post_user"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostRefRequest is the body of the like and bad endpoints.
type PostRefRequest struct {
	PostID uint `json:"postId" validate:"required"`
}
