package handlers

import (
	"net/http"

	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// JobHandler holds dependencies for job operations.
type JobHandler struct {
	service   services.JobService
	validator *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobService, validate *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
	}
}

// GetMyCompany godoc
// @Summary      Get the caller's company
// @Description  Resolves the company the authenticated employer belongs to (earliest membership).
// @Tags         employer
// @Produce      json
// @Success      200 {object}  models.Company
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse "Caller is not a member of any company"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/company [get]
// @Security     BearerAuth
func (h *JobHandler) GetMyCompany(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	company, err := h.service.ResolveCompany(c.Request.Context(), p)
	if err != nil {
		respondError(c, "GetMyCompany", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// CreateJob godoc
// @Summary      Create a job posting
// @Description  Creates an OPEN job for the caller's company.
// @Tags         employer
// @Accept       json
// @Produce      json
// @Param        job body      dto.CreateJobRequest true "Job details"
// @Success      200 {object}  models.Job
// @Failure      400 {object}  dto.ErrorResponse "Missing title, description or location"
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse "Caller has no company"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/jobs [post]
// @Security     BearerAuth
func (h *JobHandler) CreateJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, "CreateJob", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListCompanyJobs godoc
// @Summary      List the company's jobs
// @Description  Lists the caller's company jobs, newest first. With include=applications each job carries its applicants.
// @Tags         employer
// @Produce      json
// @Param        include query string false "Set to 'applications' to embed applicants" Enums(applications)
// @Success      200 {array}   models.JobWithApplications
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse "Caller has no company"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListCompanyJobs(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.ListCompanyJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	jobs, err := h.service.ListCompanyJobs(c.Request.Context(), p, req.Include == "applications")
	if err != nil {
		respondError(c, "ListCompanyJobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// UpdateJobStatus godoc
// @Summary      Open or close a job
// @Tags         employer
// @Accept       json
// @Produce      json
// @Param        id     path string                      true "Job ID" Format(uuid)
// @Param        status body dto.UpdateJobStatusRequest  true "New status"
// @Success      200 {object}  models.Job
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse "Caller is not a member of the job's company"
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/jobs/{id}/status [patch]
// @Security     BearerAuth
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	var req dto.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	job, err := h.service.UpdateJobStatus(c.Request.Context(), p, jobID, req.Status)
	if err != nil {
		respondError(c, "UpdateJobStatus", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  Deletes a job that has not received any applications. Jobs with applications should be closed instead.
// @Tags         employer
// @Param        id path string true "Job ID" Format(uuid)
// @Success      204 "Job deleted"
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      409 {object}  dto.ErrorResponse "Job has applications"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) DeleteJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	if err := h.service.DeleteJob(c.Request.Context(), p, jobID); err != nil {
		respondError(c, "DeleteJob", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOpenJobs godoc
// @Summary      Browse open jobs
// @Description  Public job board, newest first, optionally filtered by location (case-insensitive substring).
// @Tags         jobs
// @Produce      json
// @Param        limit    query int    false "Page size" default(20)
// @Param        offset   query int    false "Offset"    default(0)
// @Param        location query string false "Location filter"
// @Success      200 {array}   models.PublicJob
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /jobs [get]
func (h *JobHandler) ListOpenJobs(c *gin.Context) {
	var req dto.ListOpenJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	jobs, err := h.service.ListOpenJobs(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ListOpenJobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJobByID godoc
// @Summary      Get a job by ID
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" Format(uuid)
// @Success      200 {object}  models.Job
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetJobByID(c *gin.Context) {
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, "GetJobByID", err)
		return
	}
	c.JSON(http.StatusOK, job)
}
