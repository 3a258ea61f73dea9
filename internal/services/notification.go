package services

import (
	"context"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"
)

// NotificationService lists notifications and tracks their read state
type NotificationService struct {
	notifications NotificationStore
	views         *ViewAssembler
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications NotificationStore, views *ViewAssembler) *NotificationService {
	return &NotificationService{notifications: notifications, views: views}
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID int64) ([]*models.NotificationWithDetails, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get notifications")
	}
	views, err := s.views.NotificationsWithDetails(ctx, notifications)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load notification details")
	}
	return views, nil
}

// UnreadCount returns how many of the caller's notifications are unread
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Unexpected(err, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) (*models.NotificationWithDetails, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get notification")
	}
	if n == nil {
		return nil, apperror.NotFound("Notification not found")
	}
	if n.UserID != userID {
		return nil, apperror.Forbidden("This notification belongs to another user")
	}

	if !n.IsRead {
		if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
			return nil, apperror.Unexpected(err, "failed to mark notification read")
		}
		n.IsRead = true
	}

	view, err := s.views.NotificationWithDetails(ctx, n)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load notification details")
	}
	return view, nil
}

// MarkAllRead marks every unread notification of the caller as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	updated, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperror.Unexpected(err, "failed to mark notifications read")
	}
	return updated, nil
}
