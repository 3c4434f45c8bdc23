package service

import (
	"context"
	"log/slog"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/metrics"
	"github.com/sumire/fixhub/internal/notify"
)

// OfferStore defines the offer data access interface consumed by
// OfferService. Accept and Reject are transactional composites: the store,
// not this service, is the authority for the first-committed-wins race.
type OfferStore interface {
	Create(ctx context.Context, offer domain.Offer) (*domain.Offer, *domain.Job, error)
	FindByID(ctx context.Context, id int64) (*domain.Offer, error)
	ListByJob(ctx context.Context, jobID int64) ([]domain.Offer, error)
	Accept(ctx context.Context, offerID, clientID int64) (*domain.Acceptance, error)
	Reject(ctx context.Context, offerID, clientID int64) (*domain.Offer, error)
}

// JobFinder resolves jobs by id.
type JobFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
}

// Lifecycle is the slice of the job lifecycle manager the negotiation
// manager invokes after an acceptance commits.
type Lifecycle interface {
	OfferAccepted(ctx context.Context, acc domain.Acceptance)
}

// OfferService owns the offer negotiation state machine scoped to a job.
type OfferService struct {
	store    OfferStore
	jobs     JobFinder
	life     Lifecycle
	notifier Notifier
}

// NewOfferService creates a new OfferService.
func NewOfferService(store OfferStore, jobs JobFinder, life Lifecycle, notifier Notifier) *OfferService {
	return &OfferService{store: store, jobs: jobs, life: life, notifier: notifier}
}

// Submit creates a pending offer against an open or reopened job and
// notifies the job's client of the new quote. Fails with
// ErrJobNotAcceptingOffers when the job's status does not permit offers.
func (s *OfferService) Submit(ctx context.Context, jobID, professionalID int64, priceCents int64, terms string) (*domain.Offer, error) {
	if priceCents <= 0 {
		return nil, &domain.ValidationError{Field: "price_cents", Message: "price must be positive"}
	}

	offer, job, err := s.store.Create(ctx, domain.Offer{
		JobID:          jobID,
		ProfessionalID: professionalID,
		PriceCents:     priceCents,
		Terms:          terms,
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersSubmitted.Inc()
	s.emit(ctx, job.ClientID, job.ID, notify.KindIssueQuoted, job.Title)

	slog.Info("offer submitted", "offer_id", offer.ID, "job_id", jobID, "professional_id", professionalID)
	return offer, nil
}

// Get retrieves an offer by ID.
func (s *OfferService) Get(ctx context.Context, id int64) (*domain.Offer, error) {
	return s.store.FindByID(ctx, id)
}

// ListByJob retrieves offers on a job. The job's client sees all of them; a
// professional sees only their own.
func (s *OfferService) ListByJob(ctx context.Context, jobID, actorID int64) ([]domain.Offer, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	offers, err := s.store.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID == actorID {
		return offers, nil
	}

	own := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if o.ProfessionalID == actorID {
			own = append(own, o)
		}
	}
	return own, nil
}

// Accept resolves a pending offer in the professional's favor. The store
// commits the acceptance, the job's move to in_progress and the auto-reject
// of competing pending offers atomically; afterwards the job lifecycle
// manager fans out the notifications. A second accept on the same job loses
// with ErrJobNotAcceptingOffers; an accept on a resolved offer fails with
// ErrAlreadyResolved.
func (s *OfferService) Accept(ctx context.Context, offerID, clientID int64) (*domain.Acceptance, error) {
	acc, err := s.store.Accept(ctx, offerID, clientID)
	if err != nil {
		return nil, err
	}

	metrics.OffersResolved.WithLabelValues(string(domain.OfferStatusAccepted)).Inc()
	for range acc.Rejected {
		metrics.OffersResolved.WithLabelValues(string(domain.OfferStatusRejected)).Inc()
	}

	s.life.OfferAccepted(ctx, *acc)

	slog.Info("offer accepted", "offer_id", offerID, "job_id", acc.Job.ID,
		"professional_id", acc.Offer.ProfessionalID, "voided_offers", len(acc.Rejected))
	return acc, nil
}

// Reject resolves a pending offer against the professional and notifies
// them. Fails with ErrAlreadyResolved when the offer is no longer pending.
func (s *OfferService) Reject(ctx context.Context, offerID, clientID int64) (*domain.Offer, error) {
	rejected, err := s.store.Reject(ctx, offerID, clientID)
	if err != nil {
		return nil, err
	}

	metrics.OffersResolved.WithLabelValues(string(domain.OfferStatusRejected)).Inc()

	if job, err := s.jobs.FindByID(ctx, rejected.JobID); err == nil {
		s.emit(ctx, rejected.ProfessionalID, job.ID, notify.KindOfferRejected, job.Title)
	} else {
		slog.Warn("rejected offer notification skipped", "offer_id", offerID, "error", err)
	}

	slog.Info("offer rejected", "offer_id", offerID, "job_id", rejected.JobID)
	return rejected, nil
}

func (s *OfferService) emit(ctx context.Context, userID, jobID int64, kind notify.Kind, title string) {
	if _, err := s.notifier.Notify(ctx, userID, jobID, kind, title); err != nil {
		slog.Warn("notification write failed", "kind", kind, "user_id", userID, "job_id", jobID, "error", err)
	}
}
