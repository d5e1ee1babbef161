package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobApplicationRepo implements storage.JobApplicationRepository using PostgreSQL.
type JobApplicationRepo struct {
	db Querier
}

// NewJobApplicationRepo creates a new JobApplicationRepo.
func NewJobApplicationRepo(db *pgxpool.Pool) *JobApplicationRepo {
	return &JobApplicationRepo{db: db}
}

// WithTx creates a new JobApplicationRepo with the transaction.
func (r *JobApplicationRepo) WithTx(tx pgx.Tx) storage.JobApplicationRepository {
	return &JobApplicationRepo{db: tx}
}

// Compile-time check
var _ storage.JobApplicationRepository = (*JobApplicationRepo)(nil)

const applicationColumns = `id, job_id, user_id, cv_id, status, created_at, updated_at`

func scanApplication(row pgx.Row) (*models.JobApplication, error) {
	var app models.JobApplication
	err := row.Scan(&app.ID, &app.JobID, &app.UserID, &app.CVID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Create inserts a PENDING application. The (job_id, user_id) unique constraint
// turns a concurrent duplicate into storage.ErrConflict.
func (r *JobApplicationRepo) Create(ctx context.Context, jobID, userID, cvID uuid.UUID) (*models.JobApplication, error) {
	query := `
		INSERT INTO job_applications (id, job_id, user_id, cv_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + applicationColumns

	app, err := scanApplication(r.db.QueryRow(ctx, query, uuid.New(), jobID, userID, cvID, models.ApplicationStatusPending))
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			log.Printf("Duplicate application for job %s by user %s\n", jobID, userID)
			return nil, fmt.Errorf("already applied to job %s: %w", jobID, storage.ErrConflict)
		case pgForeignKeyViolation:
			log.Printf("Error creating application: invalid reference (job %s, cv %s): %v\n", jobID, cvID, err)
			return nil, fmt.Errorf("failed to create application: invalid reference: %w", storage.ErrNotFound)
		}
		log.Printf("Error creating application: %v\n", err)
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	log.Printf("Job application created successfully with ID: %s", app.ID)
	return app, nil
}

// GetByID retrieves a specific application.
func (r *JobApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Job application not found with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error scanning job application %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get job application %s: %w", id, err)
	}
	return app, nil
}

func (r *JobApplicationRepo) ExistsForJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	if err != nil {
		log.Printf("Error checking application for job %s user %s: %v\n", jobID, userID, err)
		return false, fmt.Errorf("failed to check existing application: %w", err)
	}
	return exists, nil
}

func (r *JobApplicationRepo) CountByJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications WHERE job_id = $1`, jobID).Scan(&n); err != nil {
		log.Printf("Error counting applications for job %s: %v\n", jobID, err)
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

// UpdateStatus overwrites the status and bumps updated_at.
func (r *JobApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error) {
	query := `
		UPDATE job_applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + applicationColumns

	app, err := scanApplication(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Job application not found for update with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating job application %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to update job application %s: %w", id, err)
	}

	log.Printf("Job application %s status set to %s", app.ID, app.Status)
	return app, nil
}

// ListApplicantsForJobs joins applicant and CV details for every application of the given jobs.
func (r *JobApplicationRepo) ListApplicantsForJobs(ctx context.Context, jobIDs []uuid.UUID) ([]models.ApplicantView, error) {
	if len(jobIDs) == 0 {
		return []models.ApplicantView{}, nil
	}
	ids := make([]string, len(jobIDs))
	for i, id := range jobIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT a.id, a.job_id, a.user_id, a.cv_id, a.status, a.created_at, a.updated_at,
		       u.name AS applicant_name, u.email AS applicant_email,
		       c.file_name AS cv_file_name, c.file_url AS cv_file_url
		FROM job_applications a
		JOIN users u ON u.id = a.user_id
		JOIN cvs c ON c.id = a.cv_id
		WHERE a.job_id = ANY($1::uuid[])
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		log.Printf("Error querying applicants for %d jobs: %v\n", len(jobIDs), err)
		return nil, fmt.Errorf("failed to query applicants: %w", err)
	}
	defer rows.Close()

	views, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ApplicantView])
	if err != nil {
		log.Printf("Error scanning applicants: %v\n", err)
		return nil, fmt.Errorf("failed to scan applicants: %w", err)
	}
	if views == nil {
		views = []models.ApplicantView{}
	}
	return views, nil
}

// ListByUser returns the applicant's own applications with the job title, newest first.
func (r *JobApplicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.MyApplication, error) {
	query := `
		SELECT a.id, a.job_id, a.user_id, a.cv_id, a.status, a.created_at, a.updated_at,
		       j.title AS job_title, c.file_name AS cv_file_name
		FROM job_applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN cvs c ON c.id = a.cv_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		log.Printf("Error querying applications for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MyApplication])
	if err != nil {
		log.Printf("Error scanning applications for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to scan applications: %w", err)
	}
	if apps == nil {
		apps = []models.MyApplication{}
	}
	return apps, nil
}
