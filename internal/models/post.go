package models

import "time"

// Post is a game-invite card. LikeCount mirrors the number of Like rows and is
// only changed in the same transaction as those rows.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Body      string    `json:"content" gorm:"type:text;not null"`
	LikeCount int64     `json:"likeCount" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	Author    User      `json:"-" gorm:"foreignKey:UserID"`
}

// FeedPost is the per-viewer projection of a post.
type FeedPost struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	LikeCount int64       `json:"likeCount"`
	IsLiked   bool        `json:"isLiked"`
	Author    UserSummary `json:"author"`
}

// View projects p for a viewer; liked reports whether the viewer liked it.
func (p *Post) View(liked bool) FeedPost {
	return FeedPost{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Body,
		CreatedAt: p.CreatedAt,
		LikeCount: p.LikeCount,
		IsLiked:   liked,
		Author:    p.Author.Summary(),
	}
}

// FeedPage is one page of composed posts.
type FeedPage struct {
	Posts       []FeedPost `json:"posts"`
	Total       int64      `json:"total"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Game        string `json:"game" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
}
