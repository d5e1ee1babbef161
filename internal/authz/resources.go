package authz

import (
	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// UploadTarget is the user a CV upload is filed under.
type UploadTarget struct {
	UserID uuid.UUID
}

// CompanyJob is a job together with the ids of its company's members.
type CompanyJob struct {
	Job       *models.Job
	MemberIDs []uuid.UUID
}

// ApplicationScope is an application with the members of the company that owns its job.
type ApplicationScope struct {
	Application *models.JobApplication
	MemberIDs   []uuid.UUID
}

// CanUploadFor: a user may only file CVs under their own id.
var CanUploadFor = IsOwner(func(t UploadTarget) uuid.UUID { return t.UserID })

// CanManageCV admits the CV owner.
var CanManageCV = IsOwner(func(cv *models.CV) uuid.UUID { return cv.UserID })

// CanApply admits job seekers.
var CanApply = All(Authenticated[*models.Job](), HasRole[*models.Job](models.RoleUser))

// CanManageJob admits members of the company owning the job.
var CanManageJob = IsMember(func(r CompanyJob) []uuid.UUID { return r.MemberIDs })

// CanReviewApplication admits members of the company owning the application's job.
var CanReviewApplication = IsMember(func(r ApplicationScope) []uuid.UUID { return r.MemberIDs })

// CanViewApplication admits the applicant or a reviewing company member.
var CanViewApplication = Any(
	IsOwner(func(r ApplicationScope) uuid.UUID { return r.Application.UserID }),
	CanReviewApplication,
)
