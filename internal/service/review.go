package service

import (
	"context"
	"log/slog"

	"github.com/sumire/fixhub/internal/domain"
)

// ReviewStore defines the review data access interface consumed by
// ReviewService.
type ReviewStore interface {
	Create(ctx context.Context, review domain.Review) (*domain.Review, error)
	FindByJob(ctx context.Context, jobID int64) (*domain.Review, error)
}

// ReviewService attaches client reviews to finished or cancelled jobs. It
// sits outside the lifecycle state machine: the only status interaction is
// the Reviewable gate.
type ReviewService struct {
	store ReviewStore
	jobs  JobFinder
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store ReviewStore, jobs JobFinder) *ReviewService {
	return &ReviewService{store: store, jobs: jobs}
}

// Attach records the client's review of a job. Only the owning client may
// review, only while the job's status permits it, and only once per job.
func (s *ReviewService) Attach(ctx context.Context, jobID, clientID int64, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &domain.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, domain.ErrForbidden
	}
	if !job.Status.Reviewable() {
		return nil, domain.ErrInvalidTransition
	}

	review, err := s.store.Create(ctx, domain.Review{
		JobID:    jobID,
		ClientID: clientID,
		Rating:   rating,
		Comment:  comment,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("review attached", "job_id", jobID, "rating", rating)
	return review, nil
}

// ForJob retrieves the review attached to a job, if any.
func (s *ReviewService) ForJob(ctx context.Context, jobID int64) (*domain.Review, error) {
	return s.store.FindByJob(ctx, jobID)
}
