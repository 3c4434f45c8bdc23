package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/fixhub/internal/domain"
)

// ReviewRepository handles review data access operations.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. The unique constraint on job_id enforces one
// review per job; a violation surfaces as domain.ErrConflict.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) (*domain.Review, error) {
	var created domain.Review
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO reviews (job_id, client_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, job_id, client_id, rating, comment, created_at`,
		review.JobID, review.ClientID, review.Rating, review.Comment,
	).StructScan(&created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert review for job %d: %w", review.JobID, err)
	}
	return &created, nil
}

// FindByJob retrieves the review attached to a job, if any.
func (r *ReviewRepository) FindByJob(ctx context.Context, jobID int64) (*domain.Review, error) {
	var review domain.Review
	err := r.db.GetContext(ctx, &review,
		`SELECT id, job_id, client_id, rating, comment, created_at
		 FROM reviews WHERE job_id = $1`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find review for job %d: %w", jobID, err)
	}
	return &review, nil
}
