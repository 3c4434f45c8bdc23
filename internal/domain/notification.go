package domain

import "time"

// Notification is an in-app notification for a user. The kind and job title
// are persisted structurally at creation time; Message holds the rendered
// English form for readers that still parse the text. Notifications are never
// deleted — older items age into the paginated history feed.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	JobID     *int64    `json:"job_id,omitempty" db:"job_id"`
	Kind      string    `json:"kind" db:"kind"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
