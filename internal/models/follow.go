package models

import "time"

// Follow is a directed edge; a user never follows themselves.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"followerId" gorm:"not null;uniqueIndex:idx_follower_followee"`
	FolloweeID uint      `json:"followeeId" gorm:"not null;index;uniqueIndex:idx_follower_followee"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FollowRequest is the body of POST and DELETE /follow.
type FollowRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}
