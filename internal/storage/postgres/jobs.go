package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobRepo implements the storage.JobRepository interface using PostgreSQL.
type JobRepo struct {
	db Querier
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

// WithTx creates a new JobRepo with the transaction.
func (r *JobRepo) WithTx(tx pgx.Tx) storage.JobRepository {
	return &JobRepo{db: tx}
}

// Compile-time check to ensure JobRepo implements JobRepository
var _ storage.JobRepository = (*JobRepo)(nil)

const jobReturning = `id, company_id, title, description, requirements, location, salary, status, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.Requirements,
		&job.Location,
		&job.Salary,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Create saves a new OPEN job posting for the company.
func (r *JobRepo) Create(ctx context.Context, companyID uuid.UUID, req *dto.CreateJobRequest) (*models.Job, error) {
	query := `
		INSERT INTO jobs (id, company_id, title, description, requirements, location, salary, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + jobReturning

	row := r.db.QueryRow(ctx, query,
		uuid.New(),
		companyID,
		req.Title,
		req.Description,
		req.Requirements,
		req.Location,
		req.Salary,
		models.JobStatusOpen,
	)

	job, err := scanJob(row)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			log.Printf("Error creating job: Foreign key violation (company_id: %s): %v\n", companyID, err)
			return nil, fmt.Errorf("failed to create job: unknown company: %w", storage.ErrNotFound)
		}
		log.Printf("Error creating job: %v\n", err)
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Printf("Job created successfully with ID: %s", job.ID)
	return job, nil
}

// GetByID retrieves a specific job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobReturning + ` FROM jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Job not found with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error scanning job by ID %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get job by ID %s: %w", id, err)
	}
	return job, nil
}

// ListByCompany retrieves every job of a company, newest first.
func (r *JobRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Job, error) {
	query, args := buildCompanyJobsQuery(companyID)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying jobs for company %s: %v\n", companyID, err)
		return nil, fmt.Errorf("failed to query company jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Job])
	if err != nil {
		log.Printf("Error scanning jobs for company %s: %v\n", companyID, err)
		return nil, fmt.Errorf("failed to scan company jobs: %w", err)
	}

	if jobs == nil {
		jobs = []models.Job{} // Return empty slice, not nil
	}
	return jobs, nil
}

// ListOpen retrieves OPEN jobs for the public board.
func (r *JobRepo) ListOpen(ctx context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error) {
	query, args := buildOpenJobsQuery(req)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying open jobs: %v\n", err)
		return nil, fmt.Errorf("failed to query open jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PublicJob])
	if err != nil {
		log.Printf("Error scanning open jobs: %v\n", err)
		return nil, fmt.Errorf("failed to scan open jobs: %w", err)
	}

	if jobs == nil {
		jobs = []models.PublicJob{}
	}
	return jobs, nil
}

// UpdateStatus opens or closes a job.
func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) (*models.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + jobReturning

	job, err := scanJob(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Job not found for status update with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating job %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to update job %s: %w", id, err)
	}

	log.Printf("Job %s status set to %s", job.ID, job.Status)
	return job, nil
}

// Delete removes a job by its ID.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			log.Printf("Job %s still has applications: %v\n", id, err)
			return fmt.Errorf("failed to delete job %s: %w", id, storage.ErrReferenced)
		}
		log.Printf("Error deleting job %s: %v\n", id, err)
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Printf("Job not found for deletion with ID: %s\n", id)
		return storage.ErrNotFound
	}

	log.Printf("Job deleted successfully: %s", id)
	return nil
}
