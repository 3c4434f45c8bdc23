package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/metrics"
	"github.com/sumire/fixhub/internal/notify"
)

// JobStore defines the job data access interface consumed by JobService.
type JobStore interface {
	Create(ctx context.Context, job domain.Job) (*domain.Job, error)
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Job, error)
	ListByProfessional(ctx context.Context, professionalID int64) ([]domain.Job, error)
	ListOpen(ctx context.Context, category string) ([]domain.Job, error)
	Transition(ctx context.Context, jobID int64, event domain.JobEvent) (*domain.Job, error)
}

// UserDirectory resolves users, used to read a client's stored default address.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Verification is the address verifier's answer for a street/postal pair.
type Verification struct {
	Valid bool
	Lat   float64
	Lng   float64
}

// AddressVerifier is the external geocoding collaborator. An invalid address
// is a hard precondition failure for job creation.
type AddressVerifier interface {
	Verify(ctx context.Context, street, postalCode string) (*Verification, error)
}

// Notifier records a notification event for a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, jobID int64, kind notify.Kind, title string) (*domain.Notification, error)
}

// JobService owns the job lifecycle: creation with its validation gate and
// the status state machine.
type JobService struct {
	store    JobStore
	users    UserDirectory
	verifier AddressVerifier
	notifier Notifier
}

// NewJobService creates a new JobService.
func NewJobService(store JobStore, users UserDirectory, verifier AddressVerifier, notifier Notifier) *JobService {
	return &JobService{store: store, users: users, verifier: verifier, notifier: notifier}
}

// CreateJobParams carries the client's input for a new job.
type CreateJobParams struct {
	Title       string
	Description string
	Categories  []string
	Urgency     domain.Urgency

	// Either the client confirms their stored default address or provides a
	// new one that must pass verification.
	UseDefaultAddress bool
	Street            string
	PostalCode        string

	// AttachImage reserves a storage key for an image the client uploads
	// through the out-of-band upload flow.
	AttachImage bool
}

// Create validates the input and inserts a new open job. It fails with a
// ValidationError on any missing required field and on an address the
// verifier rejects. Emits an issue_created notification to the client.
func (s *JobService) Create(ctx context.Context, clientID int64, params CreateJobParams) (*domain.Job, error) {
	if err := validateJobParams(params); err != nil {
		return nil, err
	}

	job := domain.Job{
		ClientID:    clientID,
		Title:       params.Title,
		Description: params.Description,
		Categories:  params.Categories,
		Urgency:     params.Urgency,
	}

	if params.UseDefaultAddress {
		user, err := s.users.FindByID(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if user.Street == nil || user.PostalCode == nil {
			return nil, &domain.ValidationError{Field: "address", Message: "no default address on file"}
		}
		job.Street = *user.Street
		job.PostalCode = *user.PostalCode
	} else {
		verification, err := s.verifier.Verify(ctx, params.Street, params.PostalCode)
		if err != nil {
			return nil, err
		}
		if !verification.Valid {
			return nil, &domain.ValidationError{Field: "address", Message: "address could not be verified"}
		}
		job.Street = params.Street
		job.PostalCode = params.PostalCode
		job.Lat = verification.Lat
		job.Lng = verification.Lng
	}

	if params.AttachImage {
		key := uuid.NewString()
		job.ImageKey = &key
	}

	created, err := s.store.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, created.ClientID, created.ID, notify.KindIssueCreated, created.Title)

	slog.Info("job created", "job_id", created.ID, "client_id", clientID, "urgency", created.Urgency)
	return created, nil
}

// Get retrieves a job by ID.
func (s *JobService) Get(ctx context.Context, id int64) (*domain.Job, error) {
	return s.store.FindByID(ctx, id)
}

// ListForClient retrieves the jobs a client posted.
func (s *JobService) ListForClient(ctx context.Context, clientID int64) ([]domain.Job, error) {
	return s.store.ListByClient(ctx, clientID)
}

// ListForProfessional retrieves the jobs assigned to a professional.
func (s *JobService) ListForProfessional(ctx context.Context, professionalID int64) ([]domain.Job, error) {
	return s.store.ListByProfessional(ctx, professionalID)
}

// ListOpen retrieves jobs currently accepting offers, optionally filtered by
// category.
func (s *JobService) ListOpen(ctx context.Context, category string) ([]domain.Job, error) {
	return s.store.ListOpen(ctx, category)
}

// Transition applies an actor-initiated lifecycle event: clientClosed,
// clientReopened or professionalCompleted. Acceptance arrives through the
// offer negotiation flow, never through this entry point. An event the
// current status does not permit fails with ErrInvalidTransition and leaves
// the job unchanged; the conditional UPDATE in the store is the final
// authority under concurrent writers.
func (s *JobService) Transition(ctx context.Context, jobID int64, event domain.JobEvent, actorID int64) (*domain.Job, error) {
	job, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch event {
	case domain.EventClientClosed, domain.EventClientReopened:
		if job.ClientID != actorID {
			return nil, domain.ErrForbidden
		}
	case domain.EventProfessionalCompleted:
		if job.ProfessionalID == nil || *job.ProfessionalID != actorID {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrInvalidTransition
	}

	if _, err := domain.NextStatus(job.Status, event); err != nil {
		metrics.JobTransitions.WithLabelValues(string(event), "invalid").Inc()
		return nil, err
	}

	updated, err := s.store.Transition(ctx, jobID, event)
	if err != nil {
		metrics.JobTransitions.WithLabelValues(string(event), "invalid").Inc()
		return nil, err
	}

	metrics.JobTransitions.WithLabelValues(string(event), "ok").Inc()
	slog.Info("job transitioned", "job_id", jobID, "event", event, "status", updated.Status)
	return updated, nil
}

// OfferAccepted applies the notification side effects of a committed offer
// acceptance: the client learns their issue moved to in progress and every
// professional whose pending offer was voided learns it was rejected. Called
// by the offer negotiation manager after the store commit.
func (s *JobService) OfferAccepted(ctx context.Context, acc domain.Acceptance) {
	metrics.JobTransitions.WithLabelValues(string(domain.EventOfferAccepted), "ok").Inc()

	s.emit(ctx, acc.Job.ClientID, acc.Job.ID, notify.KindOfferAccepted, acc.Job.Title)
	for _, rejected := range acc.Rejected {
		s.emit(ctx, rejected.ProfessionalID, acc.Job.ID, notify.KindOfferRejected, acc.Job.Title)
	}
}

// emit records a notification, logging instead of failing the surrounding
// operation: a committed state change is never rolled back over a feed write.
func (s *JobService) emit(ctx context.Context, userID, jobID int64, kind notify.Kind, title string) {
	if _, err := s.notifier.Notify(ctx, userID, jobID, kind, title); err != nil {
		slog.Warn("notification write failed", "kind", kind, "user_id", userID, "job_id", jobID, "error", err)
	}
}

func validateJobParams(params CreateJobParams) error {
	if params.Title == "" {
		return &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if params.Description == "" {
		return &domain.ValidationError{Field: "description", Message: "description is required"}
	}
	if len(params.Categories) < 1 || len(params.Categories) > 2 {
		return &domain.ValidationError{Field: "categories", Message: "between 1 and 2 categories required"}
	}
	for _, c := range params.Categories {
		if c == "" {
			return &domain.ValidationError{Field: "categories", Message: "category must not be empty"}
		}
	}
	if params.Urgency != domain.UrgencyLow && params.Urgency != domain.UrgencyHigh {
		return &domain.ValidationError{Field: "urgency", Message: "urgency must be low-priority or high-priority"}
	}
	if !params.UseDefaultAddress && (params.Street == "" || params.PostalCode == "") {
		return &domain.ValidationError{Field: "address", Message: "street and postal code are required"}
	}
	return nil
}
