package services

import (
	"context"
	"fmt"
	"log"

	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
)

type applicationService struct {
	appRepo     storage.JobApplicationRepository
	jobRepo     storage.JobRepository
	cvRepo      storage.CVRepository
	companyRepo storage.CompanyRepository
	db          TxBeginner
}

// NewApplicationService creates a new instance of ApplicationService.
func NewApplicationService(
	appRepo storage.JobApplicationRepository,
	jobRepo storage.JobRepository,
	cvRepo storage.CVRepository,
	companyRepo storage.CompanyRepository,
	db TxBeginner,
) ApplicationService {
	return &applicationService{
		appRepo:     appRepo,
		jobRepo:     jobRepo,
		cvRepo:      cvRepo,
		companyRepo: companyRepo,
		db:          db,
	}
}

// SubmitApplication files a PENDING application of cvID to jobID.
// Preconditions are checked in order: job exists, caller may apply, CV is the
// caller's and ACTIVE, no earlier application for the pair. A duplicate that
// races past the check is caught by the (job_id, user_id) unique constraint.
func (s *applicationService) SubmitApplication(ctx context.Context, p authz.Principal, jobID, cvID uuid.UUID) (*models.JobApplication, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}

	// 1. Job must exist
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s for application", jobID))
	}

	// 2. Only job seekers apply
	if !authz.Allowed(p, job, authz.CanApply) {
		log.Printf("SubmitApplication: User %s with role %s may not apply to job %s", p.UserID, p.Role, jobID)
		return nil, fmt.Errorf("%w: only job seekers can apply", ErrForbidden)
	}

	// 3. CV must be owned by the caller and ACTIVE
	if _, err := s.cvRepo.GetActive(ctx, p.UserID, cvID); err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching active CV %s", cvID))
	}

	// 4. No earlier application, whatever its status
	exists, err := s.appRepo.ExistsForJobAndUser(ctx, jobID, p.UserID)
	if err != nil {
		return nil, mapRepoError(err, "checking existing application")
	}
	if exists {
		log.Printf("SubmitApplication: User %s already applied to job %s", p.UserID, jobID)
		return nil, fmt.Errorf("%w: already applied to this job", ErrConflict)
	}

	application, err := s.appRepo.Create(ctx, jobID, p.UserID, cvID)
	if err != nil {
		log.Printf("SubmitApplication: Error creating application in repo: %v", err)
		return nil, mapRepoError(err, "creating application")
	}
	return application, nil
}

// UpdateApplicationStatus moves an application to status on behalf of a member
// of the company that owns the job. Missing applications and non-members are
// reported before an unknown status.
func (s *applicationService) UpdateApplicationStatus(ctx context.Context, p authz.Principal, applicationID uuid.UUID, status string) (*models.JobApplication, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	// --- Transaction Start ---
	tx, err := s.db.Begin(ctx)
	if err != nil {
		log.Printf("UpdateApplicationStatus: Error beginning transaction: %v", err)
		return nil, fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txAppRepo := s.appRepo.WithTx(tx)

	scope, err := s.loadScope(ctx, txAppRepo, s.jobRepo.WithTx(tx), s.companyRepo.WithTx(tx), applicationID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(p, *scope, authz.CanReviewApplication) {
		log.Printf("UpdateApplicationStatus: Forbidden attempt by user %s on application %s", p.UserID, applicationID)
		return nil, ErrForbidden
	}

	newStatus := models.ApplicationStatus(status)
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: invalid application status %q", ErrValidation, status)
	}

	updated, err := txAppRepo.UpdateStatus(ctx, applicationID, newStatus)
	if err != nil {
		return nil, mapRepoError(err, "updating application status")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("UpdateApplicationStatus: Error committing transaction: %v", err)
		return nil, fmt.Errorf("internal error committing changes: %w", err)
	}
	// --- End Transaction ---

	log.Printf("Application %s moved from %s to %s by user %s", applicationID, scope.Application.Status, updated.Status, p.UserID)
	return updated, nil
}

// GetApplication returns an application to its applicant or to a member of the owning company.
func (s *applicationService) GetApplication(ctx context.Context, p authz.Principal, applicationID uuid.UUID) (*models.JobApplication, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	scope, err := s.loadScope(ctx, s.appRepo, s.jobRepo, s.companyRepo, applicationID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(p, *scope, authz.CanViewApplication) {
		log.Printf("GetApplication: Forbidden attempt by user %s on application %s", p.UserID, applicationID)
		return nil, ErrForbidden
	}
	return scope.Application, nil
}

func (s *applicationService) ListMyApplications(ctx context.Context, p authz.Principal) ([]models.MyApplication, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	apps, err := s.appRepo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing applications for user %s", p.UserID))
	}
	return apps, nil
}

// loadScope fetches the application, its job and the job's company members.
func (s *applicationService) loadScope(
	ctx context.Context,
	appRepo storage.JobApplicationRepository,
	jobRepo storage.JobRepository,
	companyRepo storage.CompanyRepository,
	applicationID uuid.UUID,
) (*authz.ApplicationScope, error) {
	application, err := appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching application %s", applicationID))
	}
	job, err := jobRepo.GetByID(ctx, application.JobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s of application %s", application.JobID, applicationID))
	}
	members, err := companyRepo.ListMemberIDs(ctx, job.CompanyID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing members of company %s", job.CompanyID))
	}
	return &authz.ApplicationScope{Application: application, MemberIDs: members}, nil
}
