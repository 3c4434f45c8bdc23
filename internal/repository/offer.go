package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/fixhub/internal/domain"
)

const offerColumns = `id, job_id, professional_id, price_cents, terms, status, created_at, updated_at`

// OfferRepository handles offer data access operations.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository creates a new OfferRepository.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create inserts a pending offer, guarding the job's status inside the same
// transaction so an offer can never land on a job that stopped accepting.
func (r *OfferRepository) Create(ctx context.Context, offer domain.Offer) (*domain.Offer, *domain.Job, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin submit offer: %w", err)
	}
	defer tx.Rollback()

	var jobrow jobRow
	err = tx.GetContext(ctx, &jobrow,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, offer.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("lock job %d: %w", offer.JobID, err)
	}
	if !jobrow.Status.AcceptingOffers() {
		return nil, nil, domain.ErrJobNotAcceptingOffers
	}

	var created domain.Offer
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO offers (job_id, professional_id, price_cents, terms)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+offerColumns,
		offer.JobID, offer.ProfessionalID, offer.PriceCents, offer.Terms,
	).StructScan(&created)
	if err != nil {
		return nil, nil, fmt.Errorf("insert offer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit submit offer: %w", err)
	}
	return &created, jobrow.toDomain(), nil
}

// FindByID retrieves an offer by its ID.
func (r *OfferRepository) FindByID(ctx context.Context, id int64) (*domain.Offer, error) {
	var offer domain.Offer
	err := r.db.GetContext(ctx, &offer,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find offer by id %d: %w", id, err)
	}
	return &offer, nil
}

// ListByJob retrieves all offers submitted against a job, newest first.
func (r *OfferRepository) ListByJob(ctx context.Context, jobID int64) ([]domain.Offer, error) {
	var offers []domain.Offer
	err := r.db.SelectContext(ctx, &offers,
		`SELECT `+offerColumns+` FROM offers WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list offers for job %d: %w", jobID, err)
	}
	return offers, nil
}

// Accept marks an offer accepted, moves its job to in_progress, assigns the
// professional and auto-rejects every competing pending offer, all in one
// transaction. First committed wins: the loser of a concurrent accept sees
// ErrJobNotAcceptingOffers from the job-status guard, never a partial write.
func (r *OfferRepository) Accept(ctx context.Context, offerID, clientID int64) (*domain.Acceptance, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin accept offer: %w", err)
	}
	defer tx.Rollback()

	offer, jobStatus, err := lockOffer(ctx, tx, offerID, clientID)
	if err != nil {
		return nil, err
	}
	// The job gate is checked ahead of the offer's own state: once a job is
	// assigned, every further accept on it reports the job, not the offer
	// that went down with it.
	if !jobStatus.AcceptingOffers() {
		return nil, domain.ErrJobNotAcceptingOffers
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, domain.ErrAlreadyResolved
	}

	var jobrow jobRow
	err = tx.QueryRowxContext(ctx,
		`UPDATE jobs SET status = 'in_progress', professional_id = $2, updated_at = NOW()
		 WHERE id = $1 AND status IN ('open', 'reopened')
		 RETURNING `+jobColumns,
		offer.JobID, offer.ProfessionalID,
	).StructScan(&jobrow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotAcceptingOffers
		}
		return nil, fmt.Errorf("transition job %d for accept: %w", offer.JobID, err)
	}

	var accepted domain.Offer
	err = tx.QueryRowxContext(ctx,
		`UPDATE offers SET status = 'accepted', updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+offerColumns, offerID,
	).StructScan(&accepted)
	if err != nil {
		return nil, fmt.Errorf("mark offer %d accepted: %w", offerID, err)
	}

	// Competing pending offers become rejected, not merely unreachable.
	var rejected []domain.Offer
	err = tx.SelectContext(ctx, &rejected,
		`UPDATE offers SET status = 'rejected', updated_at = NOW()
		 WHERE job_id = $1 AND status = 'pending' AND id <> $2
		 RETURNING `+offerColumns,
		offer.JobID, offerID)
	if err != nil {
		return nil, fmt.Errorf("reject competing offers for job %d: %w", offer.JobID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept offer: %w", err)
	}

	return &domain.Acceptance{Offer: accepted, Job: *jobrow.toDomain(), Rejected: rejected}, nil
}

// Reject marks a pending offer rejected on behalf of the job's client.
func (r *OfferRepository) Reject(ctx context.Context, offerID, clientID int64) (*domain.Offer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reject offer: %w", err)
	}
	defer tx.Rollback()

	offer, _, err := lockOffer(ctx, tx, offerID, clientID)
	if err != nil {
		return nil, err
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, domain.ErrAlreadyResolved
	}

	var rejected domain.Offer
	err = tx.QueryRowxContext(ctx,
		`UPDATE offers SET status = 'rejected', updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+offerColumns, offerID,
	).StructScan(&rejected)
	if err != nil {
		return nil, fmt.Errorf("mark offer %d rejected: %w", offerID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reject offer: %w", err)
	}
	return &rejected, nil
}

// lockOffer loads an offer row with a lock and enforces that clientID owns
// the parent job.
func lockOffer(ctx context.Context, tx *sqlx.Tx, offerID, clientID int64) (*domain.Offer, domain.JobStatus, error) {
	var row struct {
		domain.Offer
		JobClientID int64            `db:"job_client_id"`
		JobStatus   domain.JobStatus `db:"job_status"`
	}
	err := tx.GetContext(ctx, &row,
		`SELECT o.id, o.job_id, o.professional_id, o.price_cents, o.terms, o.status,
		        o.created_at, o.updated_at, j.client_id AS job_client_id, j.status AS job_status
		 FROM offers o
		 JOIN jobs j ON j.id = o.job_id
		 WHERE o.id = $1
		 FOR UPDATE OF o, j`, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("lock offer %d: %w", offerID, err)
	}
	if row.JobClientID != clientID {
		return nil, "", domain.ErrForbidden
	}
	return &row.Offer, row.JobStatus, nil
}
