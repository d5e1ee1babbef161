package handlers

import (
	"io"
	"log"
	"net/http"

	"job-board-api/internal/assets"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CVHandler serves CV upload and management.
type CVHandler struct {
	service  services.CVService
	maxBytes int64
}

// NewCVHandler creates a CVHandler. Uploads larger than maxBytes are rejected.
func NewCVHandler(service services.CVService, maxBytes int64) *CVHandler {
	if maxBytes <= 0 {
		maxBytes = assets.DefaultMaxBytes
	}
	return &CVHandler{service: service, maxBytes: maxBytes}
}

// UploadCV godoc
// @Summary      Upload a CV
// @Description  Stores a PDF, DOC or DOCX file (max 5 MiB) and records it as an ACTIVE CV of userId. The caller must be userId.
// @Tags         cvs
// @Accept       multipart/form-data
// @Produce      json
// @Param        file   formData  file    true  "CV file"
// @Param        userId formData  string  true  "Owner of the CV" Format(uuid)
// @Success      200 {object}  dto.UploadCVResponse
// @Failure      400 {object}  dto.ErrorResponse "Missing file or userId, unsupported type, too large"
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      403 {object}  dto.ErrorResponse "Uploading for another user"
// @Failure      429 {object}  dto.ErrorResponse "Daily upload quota reached"
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /cvs/upload [post]
// @Security     BearerAuth
func (h *CVHandler) UploadCV(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	userIDStr := c.PostForm("userId")
	if userIDStr == "" {
		badRequest(c, "No user ID provided")
		return
	}
	targetUserID, err := uuid.Parse(userIDStr)
	if err != nil {
		badRequest(c, "Invalid user ID format")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("UploadCV: Error opening uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to read uploaded file", Code: CodeInternal})
		return
	}
	defer src.Close()

	// One byte past the cap is enough for the store to reject oversize files.
	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	if err != nil {
		log.Printf("UploadCV: Error reading uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to read uploaded file", Code: CodeInternal})
		return
	}

	cv, err := h.service.UploadCV(c.Request.Context(), p, targetUserID, fileHeader.Filename, data)
	if err != nil {
		respondError(c, "UploadCV", err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadCVResponse{Message: "CV uploaded successfully", CV: *cv})
}

// ListMyCVs godoc
// @Summary      List my CVs
// @Description  Returns the caller's CVs, newest first.
// @Tags         cvs
// @Produce      json
// @Success      200 {array}   models.CV
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /user/cvs [get]
// @Security     BearerAuth
func (h *CVHandler) ListMyCVs(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	cvs, err := h.service.ListCVs(c.Request.Context(), p)
	if err != nil {
		respondError(c, "ListMyCVs", err)
		return
	}
	c.JSON(http.StatusOK, cvs)
}

// DeactivateCV godoc
// @Summary      Deactivate a CV
// @Description  Marks one of the caller's CVs INACTIVE so it can no longer be used to apply.
// @Tags         cvs
// @Produce      json
// @Param        id path string true "CV ID" Format(uuid)
// @Success      200 {object}  models.CV
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      401 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Failure      500 {object}  dto.ErrorResponse
// @Router       /cvs/{id}/deactivate [patch]
// @Security     BearerAuth
func (h *CVHandler) DeactivateCV(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	cvID, ok := uuidParam(c, "id", "CV")
	if !ok {
		return
	}
	cv, err := h.service.DeactivateCV(c.Request.Context(), p, cvID)
	if err != nil {
		respondError(c, "DeactivateCV", err)
		return
	}
	c.JSON(http.StatusOK, cv)
}
