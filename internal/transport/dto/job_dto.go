package dto

import (
	"job-board-api/internal/models"
)

// --- Job Request DTOs ---

// CreateJobRequest defines the structure for creating a new job posting.
type CreateJobRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  string  `json:"description" validate:"required"`
	Location     string  `json:"location" validate:"required,max=200"`
	Requirements *string `json:"requirements"`
	Salary       *string `json:"salary" validate:"omitempty,max=100"`
}

// ListOpenJobsRequest defines parameters for the public job board.
type ListOpenJobsRequest struct {
	Limit    int    `form:"limit,default=20" validate:"gte=1,lte=100"`
	Offset   int    `form:"offset,default=0" validate:"gte=0"`
	Location string `form:"location" validate:"omitempty,max=200"`
}

// ListCompanyJobsRequest carries the include flag for the employer listing.
type ListCompanyJobsRequest struct {
	Include string `form:"include" validate:"omitempty,oneof=applications"`
}

// UpdateJobStatusRequest opens or closes a posting.
type UpdateJobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,oneof=OPEN CLOSED"`
}
