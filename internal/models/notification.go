package models

import (
	"strconv"
	"time"
)

type NotificationType string

const (
	NotificationLike   NotificationType = "LIKE"
	NotificationFollow NotificationType = "FOLLOW"
)

// Notification is an event sent to a user. It is published on the recipient's
// realtime channel and kept in the inbox (Postgres or MongoDB).
type Notification struct {
	ID                  string           `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Type                NotificationType `json:"type" gorm:"size:16;index" bson:"type"`
	RecipientID         uint             `json:"-" gorm:"not null;index" bson:"recipient_id"`
	RecipientExternalID string           `json:"-" gorm:"size:128" bson:"recipient_external_id"`
	ActorID             uint             `json:"-" bson:"actor_id"`
	ActorExternalID     string           `json:"actorId" gorm:"size:128" bson:"actor_external_id"`
	ActorName           string           `json:"actorName" gorm:"size:100" bson:"actor_name"`
	PostID              uint             `json:"postId,omitempty" bson:"post_id,omitempty"`
	PostTitle           string           `json:"postTitle,omitempty" gorm:"size:100" bson:"post_title,omitempty"`
	IsRead              bool             `json:"isRead" gorm:"default:false;index" bson:"is_read"`
	CreatedAt           time.Time        `json:"timestamp" gorm:"index" bson:"created_at"`
}

// EventName is the realtime event name for the notification type.
func (n *Notification) EventName() string {
	if n.Type == NotificationFollow {
		return "new-follow"
	}
	return "new-like"
}

// Payload is the realtime message body.
func (n *Notification) Payload() map[string]interface{} {
	switch n.Type {
	case NotificationFollow:
		return map[string]interface{}{
			"type":      "follow",
			"actorName": n.ActorName,
			"actorId":   n.ActorExternalID,
			"timestamp": n.CreatedAt,
		}
	default:
		return map[string]interface{}{
			"postId":    strconv.FormatUint(uint64(n.PostID), 10),
			"likedBy":   n.ActorName,
			"postTitle": n.PostTitle,
			"timestamp": n.CreatedAt,
		}
	}
}

// NotificationPage is one page of a user's inbox.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Unread        int64          `json:"unread"`
	Page          int            `json:"page"`
}
