package handlers_test

import (
	"context"
	"time"

	"job-board-api/internal/api/middleware"
	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

func generateTestToken(userID uuid.UUID, role models.Role, expiration time.Duration) string {
	claims := &middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// --- CVService ---

type MockCVService struct {
	mock.Mock
}

func (m *MockCVService) UploadCV(ctx context.Context, p authz.Principal, targetUserID uuid.UUID, fileName string, data []byte) (*models.CV, error) {
	args := m.Called(ctx, p, targetUserID, fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CV), args.Error(1)
}

func (m *MockCVService) ListCVs(ctx context.Context, p authz.Principal) ([]models.CV, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CV), args.Error(1)
}

func (m *MockCVService) GetActiveCV(ctx context.Context, userID, cvID uuid.UUID) (*models.CV, error) {
	args := m.Called(ctx, userID, cvID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CV), args.Error(1)
}

func (m *MockCVService) DeactivateCV(ctx context.Context, p authz.Principal, cvID uuid.UUID) (*models.CV, error) {
	args := m.Called(ctx, p, cvID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CV), args.Error(1)
}

// --- JobService ---

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) ResolveCompany(ctx context.Context, p authz.Principal) (*models.Company, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockJobService) CreateJob(ctx context.Context, p authz.Principal, req *dto.CreateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) ListCompanyJobs(ctx context.Context, p authz.Principal, includeApplications bool) ([]models.JobWithApplications, error) {
	args := m.Called(ctx, p, includeApplications)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JobWithApplications), args.Error(1)
}

func (m *MockJobService) UpdateJobStatus(ctx context.Context, p authz.Principal, jobID uuid.UUID, status models.JobStatus) (*models.Job, error) {
	args := m.Called(ctx, p, jobID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) DeleteJob(ctx context.Context, p authz.Principal, jobID uuid.UUID) error {
	args := m.Called(ctx, p, jobID)
	return args.Error(0)
}

func (m *MockJobService) ListOpenJobs(ctx context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PublicJob), args.Error(1)
}

func (m *MockJobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

// --- ApplicationService ---

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) SubmitApplication(ctx context.Context, p authz.Principal, jobID, cvID uuid.UUID) (*models.JobApplication, error) {
	args := m.Called(ctx, p, jobID, cvID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *MockApplicationService) UpdateApplicationStatus(ctx context.Context, p authz.Principal, applicationID uuid.UUID, status string) (*models.JobApplication, error) {
	args := m.Called(ctx, p, applicationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *MockApplicationService) GetApplication(ctx context.Context, p authz.Principal, applicationID uuid.UUID) (*models.JobApplication, error) {
	args := m.Called(ctx, p, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *MockApplicationService) ListMyApplications(ctx context.Context, p authz.Principal) ([]models.MyApplication, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MyApplication), args.Error(1)
}

var (
	_ services.CVService          = (*MockCVService)(nil)
	_ services.JobService         = (*MockJobService)(nil)
	_ services.ApplicationService = (*MockApplicationService)(nil)
)
