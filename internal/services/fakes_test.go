package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"job-board-api/internal/assets"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// memDB is an in-memory stand-in for the Postgres schema, including the
// (job_id, user_id) unique constraint on applications.
type memDB struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[uuid.UUID]*models.User
	companies map[uuid.UUID]*models.Company
	members   []membership
	jobs      map[uuid.UUID]*models.Job
	cvs       map[uuid.UUID]*models.CV
	apps      map[uuid.UUID]*models.JobApplication

	failCVCreate error
	begun        []*fakeTx
}

type membership struct {
	companyID uuid.UUID
	userID    uuid.UUID
	joinedAt  time.Time
}

func newMemDB() *memDB {
	return &memDB{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     map[uuid.UUID]*models.User{},
		companies: map[uuid.UUID]*models.Company{},
		jobs:      map[uuid.UUID]*models.Job{},
		cvs:       map[uuid.UUID]*models.CV{},
		apps:      map[uuid.UUID]*models.JobApplication{},
	}
}

// tick advances the fake clock so creation order is strictly increasing. Caller holds mu.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) addUser(role models.Role, name string) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &models.User{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: role, CreatedAt: db.tick()}
	db.users[u.ID] = u
	return u
}

func (db *memDB) addCompany(name string, memberIDs ...uuid.UUID) *models.Company {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := &models.Company{ID: uuid.New(), Name: name, CreatedAt: db.tick()}
	db.companies[c.ID] = c
	for _, id := range memberIDs {
		db.members = append(db.members, membership{companyID: c.ID, userID: id, joinedAt: db.tick()})
	}
	return c
}

func (db *memDB) addJob(companyID uuid.UUID, title string) *models.Job {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	j := &models.Job{ID: uuid.New(), CompanyID: companyID, Title: title, Description: "d", Location: "Remote", Status: models.JobStatusOpen, CreatedAt: now, UpdatedAt: now}
	db.jobs[j.ID] = j
	return j
}

func (db *memDB) addCV(userID uuid.UUID, status models.CVStatus) *models.CV {
	db.mu.Lock()
	defer db.mu.Unlock()
	cv := &models.CV{ID: uuid.New(), UserID: userID, FileName: "cv.pdf", FileURL: "/uploads/cvs/x-cv.pdf", Status: status, CreatedAt: db.tick()}
	db.cvs[cv.ID] = cv
	return cv
}

func (db *memDB) appCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.apps)
}

func (db *memDB) app(id uuid.UUID) models.JobApplication {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.apps[id]
}

// --- transactions ---

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (db *memDB) Begin(context.Context) (pgx.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tx := &fakeTx{}
	db.begun = append(db.begun, tx)
	return tx, nil
}

func (db *memDB) lastTx() *fakeTx {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.begun) == 0 {
		return nil
	}
	return db.begun[len(db.begun)-1]
}

// --- repositories ---

type userRepo struct{ db *memDB }

func (r userRepo) WithTx(pgx.Tx) storage.UserRepository { return r }

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type companyRepo struct{ db *memDB }

func (r companyRepo) WithTx(pgx.Tx) storage.CompanyRepository { return r }

func (r companyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.companies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r companyRepo) GetForMember(_ context.Context, userID uuid.UUID) (*models.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var first *membership
	for i := range r.db.members {
		m := &r.db.members[i]
		if m.userID == userID && (first == nil || m.joinedAt.Before(first.joinedAt)) {
			first = m
		}
	}
	if first == nil {
		return nil, storage.ErrNotFound
	}
	cp := *r.db.companies[first.companyID]
	return &cp, nil
}

func (r companyRepo) ListMemberIDs(_ context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range r.db.members {
		if m.companyID == companyID {
			ids = append(ids, m.userID)
		}
	}
	return ids, nil
}

type jobRepo struct{ db *memDB }

func (r jobRepo) WithTx(pgx.Tx) storage.JobRepository { return r }

func (r jobRepo) Create(_ context.Context, companyID uuid.UUID, req *dto.CreateJobRequest) (*models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.companies[companyID]; !ok {
		return nil, storage.ErrNotFound
	}
	now := r.db.tick()
	j := &models.Job{
		ID: uuid.New(), CompanyID: companyID, Title: req.Title, Description: req.Description,
		Requirements: req.Requirements, Location: req.Location, Salary: req.Salary,
		Status: models.JobStatusOpen, CreatedAt: now, UpdatedAt: now,
	}
	r.db.jobs[j.ID] = j
	cp := *j
	return &cp, nil
}

func (r jobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r jobRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Job{}
	for _, j := range r.db.jobs {
		if j.CompanyID == companyID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r jobRepo) ListOpen(_ context.Context, req *dto.ListOpenJobsRequest) ([]models.PublicJob, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.PublicJob{}
	for _, j := range r.db.jobs {
		if j.Status == models.JobStatusOpen {
			out = append(out, models.PublicJob{Job: *j, CompanyName: r.db.companies[j.CompanyID].Name})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if req.Offset >= len(out) {
		return []models.PublicJob{}, nil
	}
	out = out[req.Offset:]
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

func (r jobRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.JobStatus) (*models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = r.db.tick()
	cp := *j
	return &cp, nil
}

func (r jobRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.jobs[id]; !ok {
		return storage.ErrNotFound
	}
	for _, a := range r.db.apps {
		if a.JobID == id {
			return storage.ErrReferenced
		}
	}
	delete(r.db.jobs, id)
	return nil
}

type cvRepo struct{ db *memDB }

func (r cvRepo) WithTx(pgx.Tx) storage.CVRepository { return r }

func (r cvRepo) Create(_ context.Context, userID uuid.UUID, fileName, fileURL string) (*models.CV, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCVCreate != nil {
		return nil, r.db.failCVCreate
	}
	cv := &models.CV{ID: uuid.New(), UserID: userID, FileName: fileName, FileURL: fileURL, Status: models.CVStatusActive, CreatedAt: r.db.tick()}
	r.db.cvs[cv.ID] = cv
	cp := *cv
	return &cp, nil
}

func (r cvRepo) GetByID(_ context.Context, id uuid.UUID) (*models.CV, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cv, ok := r.db.cvs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *cv
	return &cp, nil
}

func (r cvRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.CV, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.CV{}
	for _, cv := range r.db.cvs {
		if cv.UserID == userID {
			out = append(out, *cv)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r cvRepo) GetActive(_ context.Context, userID, cvID uuid.UUID) (*models.CV, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cv, ok := r.db.cvs[cvID]
	if !ok || cv.UserID != userID || cv.Status != models.CVStatusActive {
		return nil, storage.ErrNotFound
	}
	cp := *cv
	return &cp, nil
}

func (r cvRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.CVStatus) (*models.CV, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cv, ok := r.db.cvs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cv.Status = status
	cp := *cv
	return &cp, nil
}

type appRepo struct{ db *memDB }

func (r appRepo) WithTx(pgx.Tx) storage.JobApplicationRepository { return r }

func (r appRepo) Create(_ context.Context, jobID, userID, cvID uuid.UUID) (*models.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.apps {
		if a.JobID == jobID && a.UserID == userID {
			return nil, storage.ErrConflict
		}
	}
	now := r.db.tick()
	a := &models.JobApplication{ID: uuid.New(), JobID: jobID, UserID: userID, CVID: cvID, Status: models.ApplicationStatusPending, CreatedAt: now, UpdatedAt: now}
	r.db.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (r appRepo) GetByID(_ context.Context, id uuid.UUID) (*models.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r appRepo) ExistsForJobAndUser(_ context.Context, jobID, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.apps {
		if a.JobID == jobID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r appRepo) CountByJob(_ context.Context, jobID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, a := range r.db.apps {
		if a.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (r appRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = r.db.tick()
	cp := *a
	return &cp, nil
}

func (r appRepo) ListApplicantsForJobs(_ context.Context, jobIDs []uuid.UUID) ([]models.ApplicantView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range jobIDs {
		wanted[id] = true
	}
	out := []models.ApplicantView{}
	for _, a := range r.db.apps {
		if !wanted[a.JobID] {
			continue
		}
		u := r.db.users[a.UserID]
		cv := r.db.cvs[a.CVID]
		out = append(out, models.ApplicantView{
			JobApplication: *a,
			ApplicantName:  u.Name,
			ApplicantEmail: u.Email,
			CVFileName:     cv.FileName,
			CVFileURL:      cv.FileURL,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r appRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.MyApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.MyApplication{}
	for _, a := range r.db.apps {
		if a.UserID == userID {
			out = append(out, models.MyApplication{JobApplication: *a, JobTitle: r.db.jobs[a.JobID].Title, CVFileName: r.db.cvs[a.CVID].FileName})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

var (
	_ storage.UserRepository           = userRepo{}
	_ storage.CompanyRepository        = companyRepo{}
	_ storage.JobRepository            = jobRepo{}
	_ storage.CVRepository             = cvRepo{}
	_ storage.JobApplicationRepository = appRepo{}
)

// --- testify mocks for the asset store and limiter ---

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Validate(data []byte, originalName string, c assets.Constraints) error {
	args := m.Called(data, originalName, c)
	return args.Error(0)
}

func (m *MockAssetStore) Store(ctx context.Context, data []byte, originalName string, c assets.Constraints) (*assets.Asset, error) {
	args := m.Called(ctx, data, originalName, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assets.Asset), args.Error(1)
}

func (m *MockAssetStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockUploadLimiter struct {
	mock.Mock
}

func (m *MockUploadLimiter) AllowUpload(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUploadLimiter) Refund(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
