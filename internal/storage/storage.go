package storage

import (
	"context"

	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository reads identity rows for projections and principal checks.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	WithTx(tx pgx.Tx) UserRepository
}

// CompanyRepository resolves companies and their members.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	// GetForMember returns the earliest membership's company for the user.
	GetForMember(ctx context.Context, userID uuid.UUID) (*models.Company, error)
	ListMemberIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
	WithTx(tx pgx.Tx) CompanyRepository
}

// JobRepository defines data operations on job postings.
type JobRepository interface {
	Create(ctx context.Context, companyID uuid.UUID, req *dto.CreateJobRequest) (*models.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Job, error)
	ListOpen(ctx context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) (*models.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) JobRepository
}

// CVRepository defines data operations on CV records.
type CVRepository interface {
	Create(ctx context.Context, userID uuid.UUID, fileName, fileURL string) (*models.CV, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CV, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CV, error)
	// GetActive returns the CV only when it belongs to userID and is ACTIVE.
	GetActive(ctx context.Context, userID, cvID uuid.UUID) (*models.CV, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CVStatus) (*models.CV, error)
	WithTx(tx pgx.Tx) CVRepository
}

// JobApplicationRepository defines data operations on applications.
type JobApplicationRepository interface {
	Create(ctx context.Context, jobID, userID, cvID uuid.UUID) (*models.JobApplication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	ExistsForJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	CountByJob(ctx context.Context, jobID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error)
	// ListApplicantsForJobs returns employer projections for the given jobs, newest first.
	ListApplicantsForJobs(ctx context.Context, jobIDs []uuid.UUID) ([]models.ApplicantView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.MyApplication, error)
	WithTx(tx pgx.Tx) JobApplicationRepository
}
