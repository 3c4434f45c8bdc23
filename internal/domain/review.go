package domain

import "time"

// Review is a client's rating of a finished or cancelled job. A job carries
// at most one review, and only while its status permits it (Reviewable).
type Review struct {
	ID        int64     `json:"id" db:"id"`
	JobID     int64     `json:"job_id" db:"job_id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
