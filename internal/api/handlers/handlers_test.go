package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/api/routes"
	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *gin.Engine
	cvs    *MockCVService
	jobs   *MockJobService
	apps   *MockApplicationService
}

func setupTestRouter() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		router: gin.New(),
		cvs:    new(MockCVService),
		jobs:   new(MockJobService),
		apps:   new(MockApplicationService),
	}
	validate := validator.New()
	api := env.router.Group("/api/v1")
	auth := middleware.JWTAuthMiddleware(testSecret)

	routes.RegisterCVRoutes(api, handlers.NewCVHandler(env.cvs, 0), auth)
	routes.RegisterJobRoutes(api, handlers.NewJobHandler(env.jobs, validate), auth)
	routes.RegisterApplicationRoutes(api, handlers.NewApplicationHandler(env.apps, validate), auth)
	return env
}

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	return e.do(method, path, token, body, "application/json")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func multipartUpload(t *testing.T, userID, fileName string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if userID != "" {
		require.NoError(t, w.WriteField("userId", userID))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// --- authentication ---

func TestAuth_MissingAndInvalidTokens(t *testing.T) {
	env := setupTestRouter()
	userID := uuid.New()

	rec := env.do(http.MethodGet, "/api/v1/user/cvs", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, handlers.CodeUnauthenticated, decodeError(t, rec).Code)

	expired := generateTestToken(userID, models.RoleUser, -time.Minute)
	rec = env.do(http.MethodGet, "/api/v1/user/cvs", expired, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	rec = env.do(http.MethodGet, "/api/v1/user/cvs", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.cvs.AssertNotCalled(t, "ListCVs", mock.Anything, mock.Anything)
}

func TestAuth_RoleDefaultsToUser(t *testing.T) {
	env := setupTestRouter()
	userID := uuid.New()
	want := authz.Principal{UserID: userID, Role: models.RoleUser}

	env.cvs.On("ListCVs", mock.Anything, want).Return([]models.CV{}, nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/user/cvs", generateTestToken(userID, "", time.Hour), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	env.cvs.AssertExpectations(t)
}

func TestPublicJobBoard_NoAuthRequired(t *testing.T) {
	env := setupTestRouter()
	jobs := []models.PublicJob{{Job: models.Job{ID: uuid.New(), Title: "Go Developer", Status: models.JobStatusOpen}, CompanyName: "Acme"}}
	env.jobs.On("ListOpenJobs", mock.Anything, &dto.ListOpenJobsRequest{Limit: 20, Offset: 0, Location: "Lisbon"}).Return(jobs, nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/jobs?location=Lisbon", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PublicJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].CompanyName)
	env.jobs.AssertExpectations(t)
}

func TestPublicJobBoard_RejectsOversizedPage(t *testing.T) {
	env := setupTestRouter()

	rec := env.do(http.MethodGet, "/api/v1/jobs?limit=500", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.jobs.AssertNotCalled(t, "ListOpenJobs", mock.Anything, mock.Anything)
}

// --- CV upload ---

func TestUploadCV(t *testing.T) {
	userID := uuid.New()
	token := generateTestToken(userID, models.RoleUser, time.Hour)
	p := authz.Principal{UserID: userID, Role: models.RoleUser}
	content := []byte("%PDF-1.4 resume")

	t.Run("Success", func(t *testing.T) {
		env := setupTestRouter()
		cv := &models.CV{ID: uuid.New(), UserID: userID, FileName: "resume.pdf", FileURL: "/uploads/cvs/1-ab-resume.pdf", Status: models.CVStatusActive}
		env.cvs.On("UploadCV", mock.Anything, p, userID, "resume.pdf", content).Return(cv, nil).Once()

		body, ct := multipartUpload(t, userID.String(), "resume.pdf", content)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.UploadCVResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, cv.ID, resp.CV.ID)
		assert.Equal(t, cv.FileURL, resp.CV.FileURL)
		env.cvs.AssertExpectations(t)
	})

	t.Run("Missing file", func(t *testing.T) {
		env := setupTestRouter()
		body, ct := multipartUpload(t, userID.String(), "", nil)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded", decodeError(t, rec).Error)
	})

	t.Run("Missing userId", func(t *testing.T) {
		env := setupTestRouter()
		body, ct := multipartUpload(t, "", "resume.pdf", content)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No user ID provided", decodeError(t, rec).Error)
	})

	t.Run("Another user's id", func(t *testing.T) {
		env := setupTestRouter()
		other := uuid.New()
		env.cvs.On("UploadCV", mock.Anything, p, other, "resume.pdf", content).
			Return(nil, fmt.Errorf("%w: cannot upload a CV for another user", services.ErrForbidden)).Once()

		body, ct := multipartUpload(t, other.String(), "resume.pdf", content)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, handlers.CodeForbidden, decodeError(t, rec).Code)
	})

	t.Run("Invalid type", func(t *testing.T) {
		env := setupTestRouter()
		env.cvs.On("UploadCV", mock.Anything, p, userID, "evil.exe", mock.Anything).
			Return(nil, fmt.Errorf("%w: file type not allowed", services.ErrValidation)).Once()

		body, ct := multipartUpload(t, userID.String(), "evil.exe", []byte("MZ"))
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handlers.CodeInvalidArgument, decodeError(t, rec).Code)
	})

	t.Run("Oversize body is truncated one byte past the cap", func(t *testing.T) {
		env := setupTestRouter()
		big := bytes.Repeat([]byte("a"), 6<<20)
		env.cvs.On("UploadCV", mock.Anything, p, userID, "big.pdf", mock.MatchedBy(func(data []byte) bool {
			return len(data) == 5<<20+1
		})).Return(nil, fmt.Errorf("%w: file exceeds 5 MiB", services.ErrValidation)).Once()

		body, ct := multipartUpload(t, userID.String(), "big.pdf", big)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.cvs.AssertExpectations(t)
	})

	t.Run("Storage down", func(t *testing.T) {
		env := setupTestRouter()
		env.cvs.On("UploadCV", mock.Anything, p, userID, "resume.pdf", content).
			Return(nil, fmt.Errorf("%w: s3 timeout", services.ErrStorageUnavailable)).Once()

		body, ct := multipartUpload(t, userID.String(), "resume.pdf", content)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, handlers.CodeStorageUnavailable, resp.Code)
		assert.NotContains(t, resp.Error, "s3 timeout")
	})

	t.Run("Quota reached", func(t *testing.T) {
		env := setupTestRouter()
		env.cvs.On("UploadCV", mock.Anything, p, userID, "resume.pdf", content).
			Return(nil, services.ErrRateLimited).Once()

		body, ct := multipartUpload(t, userID.String(), "resume.pdf", content)
		rec := env.do(http.MethodPost, "/api/v1/cvs/upload", token, body, ct)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestDeactivateCV_InvalidID(t *testing.T) {
	env := setupTestRouter()
	token := generateTestToken(uuid.New(), models.RoleUser, time.Hour)

	rec := env.do(http.MethodPatch, "/api/v1/cvs/not-a-uuid/deactivate", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid CV ID format", decodeError(t, rec).Error)
}

// --- applications ---

func TestApplyToJob(t *testing.T) {
	userID := uuid.New()
	token := generateTestToken(userID, models.RoleUser, time.Hour)
	p := authz.Principal{UserID: userID, Role: models.RoleUser}
	jobID, cvID := uuid.New(), uuid.New()
	payload := map[string]string{"jobId": jobID.String(), "cvId": cvID.String()}

	t.Run("Success", func(t *testing.T) {
		env := setupTestRouter()
		app := &models.JobApplication{ID: uuid.New(), JobID: jobID, UserID: userID, CVID: cvID, Status: models.ApplicationStatusPending}
		env.apps.On("SubmitApplication", mock.Anything, p, jobID, cvID).Return(app, nil).Once()

		rec := env.doJSON(http.MethodPost, "/api/v1/jobs/apply", token, payload)

		require.Equal(t, http.StatusOK, rec.Code)
		var got models.JobApplication
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.ApplicationStatusPending, got.Status)
		env.apps.AssertExpectations(t)
	})

	t.Run("Duplicate is a bad request", func(t *testing.T) {
		env := setupTestRouter()
		env.apps.On("SubmitApplication", mock.Anything, p, jobID, cvID).
			Return(nil, fmt.Errorf("%w: already applied to this job", services.ErrConflict)).Once()

		rec := env.doJSON(http.MethodPost, "/api/v1/jobs/apply", token, payload)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handlers.CodeDuplicateApplication, decodeError(t, rec).Code)
	})

	t.Run("Missing cvId", func(t *testing.T) {
		env := setupTestRouter()
		rec := env.doJSON(http.MethodPost, "/api/v1/jobs/apply", token, map[string]string{"jobId": jobID.String()})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "CVID")
		env.apps.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Inactive CV", func(t *testing.T) {
		env := setupTestRouter()
		env.apps.On("SubmitApplication", mock.Anything, p, jobID, cvID).
			Return(nil, fmt.Errorf("%w: active CV not found", services.ErrNotFound)).Once()

		rec := env.doJSON(http.MethodPost, "/api/v1/jobs/apply", token, payload)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := setupTestRouter()
		rec := env.doJSON(http.MethodPost, "/api/v1/jobs/apply", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	employerID := uuid.New()
	token := generateTestToken(employerID, models.RoleEmployer, time.Hour)
	p := authz.Principal{UserID: employerID, Role: models.RoleEmployer}
	appID := uuid.New()
	path := "/api/v1/employer/applications/" + appID.String()

	tests := []struct {
		name       string
		status     string
		err        error
		wantStatus int
	}{
		{"Accepted", "ACCEPTED", nil, http.StatusOK},
		{"Unknown status", "HIRED", fmt.Errorf("%w: invalid application status", services.ErrValidation), http.StatusBadRequest},
		{"Not a member", "REJECTED", services.ErrForbidden, http.StatusForbidden},
		{"Unknown application", "REVIEWING", fmt.Errorf("%w: application", services.ErrNotFound), http.StatusNotFound},
		{"Database down", "REVIEWING", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter()
			if tt.err != nil {
				env.apps.On("UpdateApplicationStatus", mock.Anything, p, appID, tt.status).Return(nil, tt.err).Once()
			} else {
				env.apps.On("UpdateApplicationStatus", mock.Anything, p, appID, tt.status).
					Return(&models.JobApplication{ID: appID, Status: models.ApplicationStatus(tt.status)}, nil).Once()
			}

			rec := env.doJSON(http.MethodPatch, path, token, map[string]string{"status": tt.status})

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "connection refused")
			}
			env.apps.AssertExpectations(t)
		})
	}
}

func TestUpdateApplicationStatus_EmptyBody(t *testing.T) {
	env := setupTestRouter()
	token := generateTestToken(uuid.New(), models.RoleEmployer, time.Hour)

	rec := env.do(http.MethodPatch, "/api/v1/employer/applications/"+uuid.NewString(), token, strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.apps.AssertNotCalled(t, "UpdateApplicationStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- employer jobs ---

func TestCreateJob_Validation(t *testing.T) {
	env := setupTestRouter()
	token := generateTestToken(uuid.New(), models.RoleEmployer, time.Hour)

	rec := env.doJSON(http.MethodPost, "/api/v1/employer/jobs", token, map[string]string{"title": "Go Dev"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	details := resp["details"].(map[string]any)
	assert.Contains(t, details, "Description")
	assert.Contains(t, details, "Location")
	env.jobs.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateJob_NoCompany(t *testing.T) {
	env := setupTestRouter()
	employerID := uuid.New()
	token := generateTestToken(employerID, models.RoleEmployer, time.Hour)
	env.jobs.On("CreateJob", mock.Anything, authz.Principal{UserID: employerID, Role: models.RoleEmployer}, mock.Anything).
		Return(nil, fmt.Errorf("%w: company", services.ErrNotFound)).Once()

	rec := env.doJSON(http.MethodPost, "/api/v1/employer/jobs", token, map[string]string{
		"title": "Go Dev", "description": "Build APIs", "location": "Remote",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCompanyJobs_IncludeApplications(t *testing.T) {
	env := setupTestRouter()
	employerID := uuid.New()
	token := generateTestToken(employerID, models.RoleEmployer, time.Hour)
	p := authz.Principal{UserID: employerID, Role: models.RoleEmployer}

	jobs := []models.JobWithApplications{{
		Job: models.Job{ID: uuid.New(), Title: "Go Dev"},
		Applications: []models.ApplicantView{{
			JobApplication: models.JobApplication{ID: uuid.New()},
			ApplicantName:  "Ana",
			CVFileURL:      "/uploads/cvs/1-ab-cv.pdf",
		}},
	}}
	env.jobs.On("ListCompanyJobs", mock.Anything, p, true).Return(jobs, nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/employer/jobs?include=applications", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"applicantName":"Ana"`)

	env.jobs.On("ListCompanyJobs", mock.Anything, p, false).
		Return([]models.JobWithApplications{{Job: jobs[0].Job}}, nil).Once()
	rec = env.do(http.MethodGet, "/api/v1/employer/jobs", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Go Dev"`)
	assert.NotContains(t, rec.Body.String(), `"applications"`)

	rec = env.do(http.MethodGet, "/api/v1/employer/jobs?include=everything", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.jobs.AssertExpectations(t)
}

func TestDeleteJob(t *testing.T) {
	employerID := uuid.New()
	token := generateTestToken(employerID, models.RoleEmployer, time.Hour)
	p := authz.Principal{UserID: employerID, Role: models.RoleEmployer}
	jobID := uuid.New()
	path := "/api/v1/employer/jobs/" + jobID.String()

	t.Run("No content", func(t *testing.T) {
		env := setupTestRouter()
		env.jobs.On("DeleteJob", mock.Anything, p, jobID).Return(nil).Once()

		rec := env.do(http.MethodDelete, path, token, nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Has applications", func(t *testing.T) {
		env := setupTestRouter()
		env.jobs.On("DeleteJob", mock.Anything, p, jobID).Return(fmt.Errorf("%w: job has 2 applications", services.ErrConflict)).Once()

		rec := env.do(http.MethodDelete, path, token, nil, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, handlers.CodeConflict, decodeError(t, rec).Code)
	})
}

func TestUpdateJobStatus_RejectsUnknownStatus(t *testing.T) {
	env := setupTestRouter()
	token := generateTestToken(uuid.New(), models.RoleEmployer, time.Hour)

	rec := env.doJSON(http.MethodPatch, "/api/v1/employer/jobs/"+uuid.NewString()+"/status", token, map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.jobs.AssertNotCalled(t, "UpdateJobStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
