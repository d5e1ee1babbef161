package services

import (
	"context"

	"job-board-api/internal/assets"
	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
)

// AssetStore persists CV binaries.
type AssetStore interface {
	Validate(data []byte, originalName string, c assets.Constraints) error
	Store(ctx context.Context, data []byte, originalName string, c assets.Constraints) (*assets.Asset, error)
	Delete(ctx context.Context, key string) error
}

// UploadLimiter reports whether a user may upload another file. Refund returns
// the slot of an admitted upload that was not stored.
type UploadLimiter interface {
	AllowUpload(ctx context.Context, userID uuid.UUID) (bool, error)
	Refund(ctx context.Context, userID uuid.UUID) error
}

// CVService manages CV uploads and records.
type CVService interface {
	UploadCV(ctx context.Context, p authz.Principal, targetUserID uuid.UUID, fileName string, data []byte) (*models.CV, error)
	ListCVs(ctx context.Context, p authz.Principal) ([]models.CV, error)
	GetActiveCV(ctx context.Context, userID, cvID uuid.UUID) (*models.CV, error)
	DeactivateCV(ctx context.Context, p authz.Principal, cvID uuid.UUID) (*models.CV, error)
}

// JobService manages company-scoped job postings and the public board.
type JobService interface {
	ResolveCompany(ctx context.Context, p authz.Principal) (*models.Company, error)
	CreateJob(ctx context.Context, p authz.Principal, req *dto.CreateJobRequest) (*models.Job, error)
	ListCompanyJobs(ctx context.Context, p authz.Principal, includeApplications bool) ([]models.JobWithApplications, error)
	UpdateJobStatus(ctx context.Context, p authz.Principal, jobID uuid.UUID, status models.JobStatus) (*models.Job, error)
	DeleteJob(ctx context.Context, p authz.Principal, jobID uuid.UUID) error
	ListOpenJobs(ctx context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
}

// ApplicationService runs the application workflow.
type ApplicationService interface {
	SubmitApplication(ctx context.Context, p authz.Principal, jobID, cvID uuid.UUID) (*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, p authz.Principal, applicationID uuid.UUID, status string) (*models.JobApplication, error)
	GetApplication(ctx context.Context, p authz.Principal, applicationID uuid.UUID) (*models.JobApplication, error)
	ListMyApplications(ctx context.Context, p authz.Principal) ([]models.MyApplication, error)
}
