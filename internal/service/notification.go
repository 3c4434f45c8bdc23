package service

import (
	"context"
	"fmt"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/metrics"
	"github.com/sumire/fixhub/internal/notify"
)

// NotificationStore defines the notification data access interface consumed
// by NotificationService.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	Recent(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	History(ctx context.Context, userID int64, page, limit int) ([]domain.Notification, error)
	ToggleRead(ctx context.Context, userID, id int64) (*domain.Notification, error)
}

// NotificationService creates notifications from lifecycle events and serves
// the two feed endpoints: the bounded recent set and the paginated history.
type NotificationService struct {
	store       NotificationStore
	recentLimit int
	pageSize    int
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore, recentLimit, pageSize int) *NotificationService {
	if recentLimit <= 0 {
		recentLimit = 20
	}
	if pageSize <= 0 {
		pageSize = 5
	}
	return &NotificationService{store: store, recentLimit: recentLimit, pageSize: pageSize}
}

// PageSize returns the fixed history page size.
func (s *NotificationService) PageSize() int {
	return s.pageSize
}

// Notify records a notification event for a user. The structured (kind,
// title) pair is persisted alongside the rendered canonical English message;
// translation happens only when the notification is displayed.
func (s *NotificationService) Notify(ctx context.Context, userID int64, jobID int64, kind notify.Kind, title string) (*domain.Notification, error) {
	if !notify.Known(kind) {
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}

	created, err := s.store.Create(ctx, domain.Notification{
		UserID:  userID,
		JobID:   &jobID,
		Kind:    string(kind),
		Title:   title,
		Message: notify.Render(kind, title),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s notification: %w", kind, err)
	}

	metrics.NotificationsCreated.WithLabelValues(string(kind)).Inc()
	return created, nil
}

// Recent returns the user's current feed head, unread items first.
func (s *NotificationService) Recent(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.store.Recent(ctx, userID, s.recentLimit)
}

// History returns one fixed-size page of older notifications. An exhausted
// page cursor yields an empty page, not an error.
func (s *NotificationService) History(ctx context.Context, userID int64, page int) ([]domain.Notification, error) {
	return s.store.History(ctx, userID, page, s.pageSize)
}

// ToggleRead flips a notification's read flag. Last write wins under
// concurrent toggles.
func (s *NotificationService) ToggleRead(ctx context.Context, userID, id int64) (*domain.Notification, error) {
	return s.store.ToggleRead(ctx, userID, id)
}
