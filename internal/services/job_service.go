package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
)

type jobService struct {
	jobRepo     storage.JobRepository
	companyRepo storage.CompanyRepository
	appRepo     storage.JobApplicationRepository
	db          TxBeginner
}

// NewJobService creates a new instance of JobService.
func NewJobService(jobRepo storage.JobRepository, companyRepo storage.CompanyRepository, appRepo storage.JobApplicationRepository, db TxBeginner) JobService {
	return &jobService{jobRepo: jobRepo, companyRepo: companyRepo, appRepo: appRepo, db: db}
}

// ResolveCompany returns the company the principal manages.
func (s *jobService) ResolveCompany(ctx context.Context, p authz.Principal) (*models.Company, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	company, err := s.companyRepo.GetForMember(ctx, p.UserID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("resolving company for user %s", p.UserID))
	}
	return company, nil
}

func (s *jobService) CreateJob(ctx context.Context, p authz.Principal, req *dto.CreateJobRequest) (*models.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Description == "" || req.Location == "" {
		return nil, fmt.Errorf("%w: title, description and location are required", ErrValidation)
	}

	company, err := s.ResolveCompany(ctx, p)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.Create(ctx, company.ID, req)
	if err != nil {
		log.Printf("JobService: Error creating job for company %s: %v", company.ID, err)
		return nil, mapRepoError(err, "creating job")
	}
	return job, nil
}

// ListCompanyJobs lists the principal's company jobs, newest first, optionally
// with each job's applicants (also newest first).
func (s *jobService) ListCompanyJobs(ctx context.Context, p authz.Principal, includeApplications bool) ([]models.JobWithApplications, error) {
	company, err := s.ResolveCompany(ctx, p)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing jobs for company %s", company.ID))
	}

	result := make([]models.JobWithApplications, len(jobs))
	for i, job := range jobs {
		result[i] = models.JobWithApplications{Job: job}
	}
	if !includeApplications || len(jobs) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(jobs))
	index := make(map[uuid.UUID]int, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
		index[job.ID] = i
		result[i].Applications = []models.ApplicantView{}
	}

	views, err := s.appRepo.ListApplicantsForJobs(ctx, ids)
	if err != nil {
		return nil, mapRepoError(err, "listing applicants")
	}
	for _, v := range views {
		if i, ok := index[v.JobID]; ok {
			result[i].Applications = append(result[i].Applications, v)
		}
	}
	return result, nil
}

// loadManagedJob fetches a job and checks the principal belongs to its company. Must run inside tx repos.
func loadManagedJob(ctx context.Context, jobRepo storage.JobRepository, companyRepo storage.CompanyRepository, p authz.Principal, jobID uuid.UUID) (*models.Job, error) {
	job, err := jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", jobID))
	}
	members, err := companyRepo.ListMemberIDs(ctx, job.CompanyID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing members of company %s", job.CompanyID))
	}
	if !authz.Allowed(p, authz.CompanyJob{Job: job, MemberIDs: members}, authz.CanManageJob) {
		log.Printf("Forbidden attempt by user %s on job %s of company %s", p.UserID, job.ID, job.CompanyID)
		return nil, ErrForbidden
	}
	return job, nil
}

func (s *jobService) UpdateJobStatus(ctx context.Context, p authz.Principal, jobID uuid.UUID, status models.JobStatus) (*models.Job, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown job status %q", ErrValidation, status)
	}

	// --- Transaction Start ---
	tx, err := s.db.Begin(ctx)
	if err != nil {
		log.Printf("UpdateJobStatus: Error beginning transaction: %v", err)
		return nil, fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txJobRepo := s.jobRepo.WithTx(tx)
	if _, err := loadManagedJob(ctx, txJobRepo, s.companyRepo.WithTx(tx), p, jobID); err != nil {
		return nil, err
	}

	updated, err := txJobRepo.UpdateStatus(ctx, jobID, status)
	if err != nil {
		return nil, mapRepoError(err, "updating job status")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("UpdateJobStatus: Error committing transaction: %v", err)
		return nil, fmt.Errorf("internal error committing changes: %w", err)
	}
	return updated, nil
}

// DeleteJob removes a job. Jobs that already received applications cannot be deleted.
func (s *jobService) DeleteJob(ctx context.Context, p authz.Principal, jobID uuid.UUID) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		log.Printf("DeleteJob: Error beginning transaction: %v", err)
		return fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txJobRepo := s.jobRepo.WithTx(tx)
	if _, err := loadManagedJob(ctx, txJobRepo, s.companyRepo.WithTx(tx), p, jobID); err != nil {
		return err
	}

	n, err := s.appRepo.WithTx(tx).CountByJob(ctx, jobID)
	if err != nil {
		return mapRepoError(err, "counting applications")
	}
	if n > 0 {
		log.Printf("DeleteJob: Job %s has %d applications, refusing delete", jobID, n)
		return fmt.Errorf("%w: job has %d applications; close it instead", ErrConflict, n)
	}

	if err := txJobRepo.Delete(ctx, jobID); err != nil {
		return mapRepoError(err, "deleting job")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("DeleteJob: Error committing transaction: %v", err)
		return fmt.Errorf("internal error committing changes: %w", err)
	}
	log.Printf("DeleteJob: Job %s deleted by user %s", jobID, p.UserID)
	return nil
}

func (s *jobService) ListOpenJobs(ctx context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	req.Location = strings.TrimSpace(req.Location)

	jobs, err := s.jobRepo.ListOpen(ctx, req)
	if err != nil {
		log.Printf("JobService: Error listing open jobs: %v", err)
		return nil, mapRepoError(err, "listing open jobs")
	}
	return jobs, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err, "getting job by ID")
	}
	return job, nil
}
