package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/fixhub/internal/domain"
)

const jobColumns = `id, client_id, title, description, categories, urgency, street, postal_code,
	 lat, lng, image_key, status, professional_id, created_at, updated_at`

// jobRow mirrors the jobs table; categories are stored comma-separated.
type jobRow struct {
	ID             int64            `db:"id"`
	ClientID       int64            `db:"client_id"`
	Title          string           `db:"title"`
	Description    string           `db:"description"`
	Categories     string           `db:"categories"`
	Urgency        domain.Urgency   `db:"urgency"`
	Street         string           `db:"street"`
	PostalCode     string           `db:"postal_code"`
	Lat            float64          `db:"lat"`
	Lng            float64          `db:"lng"`
	ImageKey       *string          `db:"image_key"`
	Status         domain.JobStatus `db:"status"`
	ProfessionalID *int64           `db:"professional_id"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

func (row jobRow) toDomain() *domain.Job {
	job := domain.Job{
		ID:             row.ID,
		ClientID:       row.ClientID,
		Title:          row.Title,
		Description:    row.Description,
		Urgency:        row.Urgency,
		Street:         row.Street,
		PostalCode:     row.PostalCode,
		Lat:            row.Lat,
		Lng:            row.Lng,
		ImageKey:       row.ImageKey,
		Status:         row.Status,
		ProfessionalID: row.ProfessionalID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Categories != "" {
		job.Categories = strings.Split(row.Categories, ",")
	}
	return &job
}

// JobRepository handles job data access operations.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job with status open and returns the stored row.
func (r *JobRepository) Create(ctx context.Context, job domain.Job) (*domain.Job, error) {
	var row jobRow
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO jobs (client_id, title, description, categories, urgency, street, postal_code, lat, lng, image_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+jobColumns,
		job.ClientID, job.Title, job.Description, strings.Join(job.Categories, ","),
		job.Urgency, job.Street, job.PostalCode, job.Lat, job.Lng, job.ImageKey,
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return row.toDomain(), nil
}

// FindByID retrieves a job by its ID.
func (r *JobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find job by id %d: %w", id, err)
	}
	return row.toDomain(), nil
}

// ListByClient retrieves a client's jobs, newest first.
func (r *JobRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Job, error) {
	var rows []jobRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+jobColumns+` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list jobs for client %d: %w", clientID, err)
	}
	return rowsToJobs(rows), nil
}

// ListOpen retrieves jobs currently accepting offers, optionally filtered by
// a professional category, newest first.
func (r *JobRepository) ListOpen(ctx context.Context, category string) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status IN ('open', 'reopened')`
	args := []any{}
	if category != "" {
		query += ` AND ',' || categories || ',' LIKE $1`
		args = append(args, "%,"+category+",%")
	}
	query += ` ORDER BY created_at DESC`

	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	return rowsToJobs(rows), nil
}

// ListByProfessional retrieves jobs assigned to a professional, newest first.
func (r *JobRepository) ListByProfessional(ctx context.Context, professionalID int64) ([]domain.Job, error) {
	var rows []jobRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+jobColumns+` FROM jobs WHERE professional_id = $1 ORDER BY created_at DESC`, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list jobs for professional %d: %w", professionalID, err)
	}
	return rowsToJobs(rows), nil
}

// Transition applies a lifecycle event with a conditional UPDATE guarded by
// the event's permitted source statuses. Under concurrent writers the guard,
// not the caller's earlier read, decides the outcome. A zero-row update is
// disambiguated into ErrNotFound or ErrInvalidTransition by re-reading.
func (r *JobRepository) Transition(ctx context.Context, jobID int64, event domain.JobEvent) (*domain.Job, error) {
	sources := domain.TransitionSources(event)
	if len(sources) == 0 {
		return nil, domain.ErrInvalidTransition
	}
	target, err := domain.NextStatus(sources[0], event)
	if err != nil {
		return nil, err
	}

	set := `status = ?, updated_at = NOW()`
	if event == domain.EventClientReopened {
		// A reopened job goes back on the market without its previous
		// professional.
		set += `, professional_id = NULL`
	}

	query, args, err := sqlx.In(
		`UPDATE jobs SET `+set+`
		 WHERE id = ? AND status IN (?)
		 RETURNING `+jobColumns,
		target, jobID, sources)
	if err != nil {
		return nil, fmt.Errorf("build transition query: %w", err)
	}

	var row jobRow
	err = r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).StructScan(&row)
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition job %d on %s: %w", jobID, event, err)
	}

	if _, findErr := r.FindByID(ctx, jobID); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrInvalidTransition
}

func rowsToJobs(rows []jobRow) []domain.Job {
	jobs := make([]domain.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, *row.toDomain())
	}
	return jobs
}
