package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/fixhub/internal/domain"
)

const notificationColumns = `id, user_id, job_id, kind, title, message, read, created_at`

// NotificationRepository handles notification data access operations.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification. Rows are immutable apart from the read flag.
func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	var created domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, job_id, kind, title, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+notificationColumns,
		n.UserID, n.JobID, n.Kind, n.Title, n.Message,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &created, nil
}

// Recent returns the user's current feed head: unread items first, newest
// first within equal read-state, capped at limit.
func (r *NotificationRepository) Recent(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	var items []domain.Notification
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY read ASC, created_at DESC, id DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent notifications for user %d: %w", userID, err)
	}
	return items, nil
}

// History returns one fixed-size page of the user's notifications, newest
// first, using a 1-based monotonically increasing page cursor. An exhausted
// cursor yields an empty slice, never an error.
func (r *NotificationRepository) History(ctx context.Context, userID int64, page, limit int) ([]domain.Notification, error) {
	if page < 1 {
		page = 1
	}
	var items []domain.Notification
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("history page %d for user %d: %w", page, userID, err)
	}
	return items, nil
}

// ToggleRead flips the read flag of a notification owned by userID.
// Last write wins; concurrent toggles are not merged.
func (r *NotificationRepository) ToggleRead(ctx context.Context, userID, id int64) (*domain.Notification, error) {
	var updated domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`UPDATE notifications SET read = NOT read
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+notificationColumns,
		id, userID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("toggle read on notification %d: %w", id, err)
	}
	return &updated, nil
}
