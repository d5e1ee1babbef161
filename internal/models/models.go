package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// scanEnumString extracts the raw text from a driver value for enum scanning.
func scanEnumString(value interface{}, typeName string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to scan %s: value is not string or []byte", typeName)
	}
}

// --- Role Enum ---
type Role string

const (
	RoleUser     Role = "USER"
	RoleEmployer Role = "EMPLOYER"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleEmployer
}

// Scan implements the sql.Scanner interface for Role
func (r *Role) Scan(value interface{}) error {
	strVal, err := scanEnumString(value, "Role")
	if err != nil {
		return err
	}
	v := Role(strVal)
	if !v.IsValid() {
		return fmt.Errorf("invalid Role value: %s", strVal)
	}
	*r = v
	return nil
}

// Value implements the driver.Valuer interface for Role
func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}

// --- Job Status Enum ---
type JobStatus string

const (
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
)

func (s JobStatus) IsValid() bool {
	return s == JobStatusOpen || s == JobStatusClosed
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value interface{}) error {
	strVal, err := scanEnumString(value, "JobStatus")
	if err != nil {
		return err
	}
	v := JobStatus(strVal)
	if !v.IsValid() {
		return fmt.Errorf("invalid JobStatus value: %s", strVal)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// --- CV Status Enum ---
type CVStatus string

const (
	CVStatusActive   CVStatus = "ACTIVE"
	CVStatusInactive CVStatus = "INACTIVE"
)

func (s CVStatus) IsValid() bool {
	return s == CVStatusActive || s == CVStatusInactive
}

// Scan implements the sql.Scanner interface for CVStatus
func (s *CVStatus) Scan(value interface{}) error {
	strVal, err := scanEnumString(value, "CVStatus")
	if err != nil {
		return err
	}
	v := CVStatus(strVal)
	if !v.IsValid() {
		return fmt.Errorf("invalid CVStatus value: %s", strVal)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for CVStatus
func (s CVStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// --- Application Status Enum ---
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusReviewing ApplicationStatus = "REVIEWING"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
)

// ApplicationStatuses lists every status an application may hold.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusReviewing,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
}

func (s ApplicationStatus) IsValid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Scan implements the sql.Scanner interface for ApplicationStatus
func (s *ApplicationStatus) Scan(value interface{}) error {
	strVal, err := scanEnumString(value, "ApplicationStatus")
	if err != nil {
		return err
	}
	v := ApplicationStatus(strVal)
	if !v.IsValid() {
		return fmt.Errorf("invalid ApplicationStatus value: %s", strVal)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for ApplicationStatus
func (s ApplicationStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// User is a person known to the identity provider. Rows are read here for projections only.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Company groups employer accounts that manage jobs together.
type Company struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  *string   `json:"location,omitempty" db:"location"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Job is a posting owned by a company.
type Job struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CompanyID    uuid.UUID `json:"companyId" db:"company_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Requirements *string   `json:"requirements,omitempty" db:"requirements"`
	Location     string    `json:"location" db:"location"`
	Salary       *string   `json:"salary,omitempty" db:"salary"`
	Status       JobStatus `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicJob is a job joined with its company name for the public board.
type PublicJob struct {
	Job
	CompanyName string `json:"companyName" db:"company_name"`
}

// CV is an uploaded resume file owned by a user.
type CV struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	FileName  string    `json:"fileName" db:"file_name"`
	FileURL   string    `json:"fileUrl" db:"file_url"`
	Status    CVStatus  `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// JobApplication links an applicant, a job and the CV submitted for it.
type JobApplication struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	JobID     uuid.UUID         `json:"jobId" db:"job_id"`
	UserID    uuid.UUID         `json:"userId" db:"user_id"`
	CVID      uuid.UUID         `json:"cvId" db:"cv_id"`
	Status    ApplicationStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
}

// ApplicantView is the employer-facing projection of an application.
type ApplicantView struct {
	JobApplication
	ApplicantName  string `json:"applicantName" db:"applicant_name"`
	ApplicantEmail string `json:"applicantEmail" db:"applicant_email"`
	CVFileName     string `json:"cvFileName" db:"cv_file_name"`
	CVFileURL      string `json:"cvFileUrl" db:"cv_file_url"`
}

// MyApplication is the applicant-facing projection with the job title.
type MyApplication struct {
	JobApplication
	JobTitle   string `json:"jobTitle" db:"job_title"`
	CVFileName string `json:"cvFileName" db:"cv_file_name"`
}

// JobWithApplications bundles a job with its applicant projections.
// Applications is nil when they were not requested and the key is then left out;
// a requested but empty list is sent as [].
type JobWithApplications struct {
	Job
	Applications []ApplicantView `json:"applications"`
}

func (j JobWithApplications) MarshalJSON() ([]byte, error) {
	if j.Applications == nil {
		return json.Marshal(j.Job)
	}
	type withApplications JobWithApplications
	return json.Marshal(withApplications(j))
}
