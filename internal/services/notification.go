package services

import (
	"context"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

const notificationPageSize = 20

// NotificationService reads and updates a user's inbox.
type NotificationService struct {
	inbox repositories.NotificationRepository
}

func NewNotificationService(inbox repositories.NotificationRepository) *NotificationService {
	return &NotificationService{inbox: inbox}
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, user *models.User, page int) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}

	items, total, err := s.inbox.GetByRecipientID(ctx, user.ID, page, notificationPageSize)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to load notifications")
	}
	unread, err := s.inbox.GetUnreadCount(ctx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.Internal, err, "failed to count notifications")
	}

	return &models.NotificationPage{Notifications: items, Total: total, Unread: unread, Page: page}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, user *models.User) (int64, error) {
	n, err := s.inbox.GetUnreadCount(ctx, user.ID)
	if err != nil {
		return 0, errorx.Wrap(errorx.Internal, err, "failed to count notifications")
	}
	return n, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, user *models.User, id string) error {
	if err := s.inbox.MarkAsRead(ctx, user.ID, id); err != nil {
		return mapNotFound(err, errorx.ErrNotificationNotFound, "failed to update notification")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, user *models.User) error {
	if err := s.inbox.MarkAllAsRead(ctx, user.ID); err != nil {
		return errorx.Wrap(errorx.Internal, err, "failed to update notifications")
	}
	return nil
}
