package dto

import "job-board-api/internal/models"

// UploadCVResponse wraps the created CV record.
type UploadCVResponse struct {
	Message string    `json:"message"`
	CV      models.CV `json:"cv"`
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
