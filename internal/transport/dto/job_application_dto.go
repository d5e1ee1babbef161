package dto

import (
	"github.com/google/uuid"
)

// ApplyToJobRequest is the body of POST /jobs/apply.
type ApplyToJobRequest struct {
	JobID uuid.UUID `json:"jobId" validate:"required"`
	CVID  uuid.UUID `json:"cvId" validate:"required"`
}

// UpdateApplicationStatusRequest carries the requested status as free text.
// The closed set is enforced by the service so that unknown values map to InvalidArgument.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
