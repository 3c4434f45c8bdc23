package domain

import "time"

// OfferStatus represents the state of a professional's quote.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Offer is a priced proposal from a professional against a job. Offers are
// terminal once accepted or rejected.
type Offer struct {
	ID             int64       `json:"id" db:"id"`
	JobID          int64       `json:"job_id" db:"job_id"`
	ProfessionalID int64       `json:"professional_id" db:"professional_id"`
	PriceCents     int64       `json:"price_cents" db:"price_cents"`
	Terms          string      `json:"terms" db:"terms"`
	Status         OfferStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Resolved reports whether the offer has reached a terminal status.
func (s OfferStatus) Resolved() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

// Acceptance captures everything a committed offer acceptance changed: the
// accepted offer, the job moved to in_progress, and the competing pending
// offers that were auto-rejected alongside it.
type Acceptance struct {
	Offer    Offer
	Job      Job
	Rejected []Offer
}
