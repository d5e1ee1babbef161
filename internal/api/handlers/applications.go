package handlers

import (
	"errors"
	"log"
	"net/http"

	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ApplicationHandler serves the application workflow endpoints.
type ApplicationHandler struct {
	service   services.ApplicationService
	validator *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(service services.ApplicationService, validate *validator.Validate) *ApplicationHandler {
	return &ApplicationHandler{service: service, validator: validate}
}

// ApplyToJob godoc
// @Summary      Apply to a job
// @Description  Submits one of the caller's ACTIVE CVs to a job. A user can apply to a job only once.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        application body dto.ApplyToJobRequest true "Job and CV"
// @Success      200 {object}  models.JobApplication
// @Failure      400 {object}  dto.ErrorResponse "Missing fields or already applied"
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse "Caller is not a job seeker"
// @Failure      404 {object}  dto.ErrorResponse "Job or active CV not found"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /jobs/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.ApplyToJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	application, err := h.service.SubmitApplication(c.Request.Context(), p, req.JobID, req.CVID)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			log.Printf("ApplyToJob: Duplicate application by user %s for job %s", p.UserID, req.JobID)
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "You have already applied to this job", Code: CodeDuplicateApplication})
			return
		}
		respondError(c, "ApplyToJob", err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// UpdateApplicationStatus godoc
// @Summary      Review an application
// @Description  Moves an application to PENDING, REVIEWING, ACCEPTED or REJECTED. Only members of the job's company may do this.
// @Tags         employer
// @Accept       json
// @Produce      json
// @Param        id     path string                                true "Application ID" Format(uuid)
// @Param        status body dto.UpdateApplicationStatusRequest   true "New status"
// @Success      200 {object}  models.JobApplication
// @Failure      400 {object}  dto.ErrorResponse "Unknown status"
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /employer/applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	applicationID, ok := uuidParam(c, "id", "application")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		validationFailed(c, err)
		return
	}

	application, err := h.service.UpdateApplicationStatus(c.Request.Context(), p, applicationID, req.Status)
	if err != nil {
		respondError(c, "UpdateApplicationStatus", err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// ListMyApplications godoc
// @Summary      List my applications
// @Description  Returns the caller's applications, newest first, with job title and CV file name.
// @Tags         applications
// @Produce      json
// @Success      200 {array}   models.MyApplication
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /applications/my [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	apps, err := h.service.ListMyApplications(c.Request.Context(), p)
	if err != nil {
		respondError(c, "ListMyApplications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// GetApplicationByID godoc
// @Summary      Get an application
// @Description  Visible to the applicant and to members of the company that owns the job.
// @Tags         applications
// @Produce      json
// @Param        id path string true "Application ID" Format(uuid)
// @Success      200 {object}  models.JobApplication
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetApplicationByID(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	applicationID, ok := uuidParam(c, "id", "application")
	if !ok {
		return
	}
	application, err := h.service.GetApplication(c.Request.Context(), p, applicationID)
	if err != nil {
		respondError(c, "GetApplicationByID", err)
		return
	}
	c.JSON(http.StatusOK, application)
}
