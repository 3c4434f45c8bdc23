package domain

import "time"

// JobStatus represents the lifecycle state of a posted job.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusClosed     JobStatus = "closed"
	JobStatusReopened   JobStatus = "reopened"
)

// Urgency is the client-declared timeline for a job.
type Urgency string

const (
	UrgencyLow  Urgency = "low-priority"
	UrgencyHigh Urgency = "high-priority"
)

// JobEvent is a lifecycle event applied to a job.
type JobEvent string

const (
	EventOfferAccepted         JobEvent = "offer_accepted"
	EventClientClosed          JobEvent = "client_closed"
	EventClientReopened        JobEvent = "client_reopened"
	EventProfessionalCompleted JobEvent = "professional_completed"
)

// Job represents a service request posted by a client. Jobs are never
// deleted; cancellation is the closed status.
type Job struct {
	ID             int64     `json:"id" db:"id"`
	ClientID       int64     `json:"client_id" db:"client_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Categories     []string  `json:"categories" db:"-"`
	Urgency        Urgency   `json:"urgency" db:"urgency"`
	Street         string    `json:"street" db:"street"`
	PostalCode     string    `json:"postal_code" db:"postal_code"`
	Lat            float64   `json:"lat" db:"lat"`
	Lng            float64   `json:"lng" db:"lng"`
	ImageKey       *string   `json:"image_key,omitempty" db:"image_key"`
	Status         JobStatus `json:"status" db:"status"`
	ProfessionalID *int64    `json:"professional_id,omitempty" db:"professional_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// jobTransitions maps each event to its permitted source statuses and target.
var jobTransitions = map[JobEvent]struct {
	from   []JobStatus
	target JobStatus
}{
	EventOfferAccepted:         {from: []JobStatus{JobStatusOpen, JobStatusReopened}, target: JobStatusInProgress},
	EventClientClosed:          {from: []JobStatus{JobStatusOpen, JobStatusReopened, JobStatusInProgress}, target: JobStatusClosed},
	EventClientReopened:        {from: []JobStatus{JobStatusClosed, JobStatusCompleted}, target: JobStatusReopened},
	EventProfessionalCompleted: {from: []JobStatus{JobStatusInProgress}, target: JobStatusCompleted},
}

// NextStatus returns the status a job in from moves to when event fires.
// It returns ErrInvalidTransition when the event is not permitted from the
// current status; the job is left untouched by callers in that case.
func NextStatus(from JobStatus, event JobEvent) (JobStatus, error) {
	rule, ok := jobTransitions[event]
	if !ok {
		return "", ErrInvalidTransition
	}
	for _, s := range rule.from {
		if s == from {
			return rule.target, nil
		}
	}
	return "", ErrInvalidTransition
}

// TransitionSources returns the statuses from which event may fire. The
// returned slice backs the conditional UPDATE guard in the repository, which
// is the final authority under concurrent writers.
func TransitionSources(event JobEvent) []JobStatus {
	rule, ok := jobTransitions[event]
	if !ok {
		return nil
	}
	return rule.from
}

// AcceptingOffers reports whether a job in status s may receive new offers.
func (s JobStatus) AcceptingOffers() bool {
	return s == JobStatusOpen || s == JobStatusReopened
}

// Reviewable reports whether a job in status s may carry a review.
func (s JobStatus) Reviewable() bool {
	return s == JobStatusInProgress || s == JobStatusCompleted || s == JobStatusClosed
}

// Valid reports whether s is one of the recognized job statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusClosed, JobStatusReopened:
		return true
	}
	return false
}
