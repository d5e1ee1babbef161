package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"job-board-api/internal/assets"
	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
)

type cvService struct {
	cvRepo      storage.CVRepository
	userRepo    storage.UserRepository
	store       AssetStore
	limiter     UploadLimiter
	constraints assets.Constraints
}

// NewCVService creates a CVService. limiter may be nil.
func NewCVService(cvRepo storage.CVRepository, userRepo storage.UserRepository, store AssetStore, limiter UploadLimiter, constraints assets.Constraints) CVService {
	return &cvService{
		cvRepo:      cvRepo,
		userRepo:    userRepo,
		store:       store,
		limiter:     limiter,
		constraints: constraints,
	}
}

// UploadCV stores the file and then records it. If the record cannot be written
// the stored asset is removed again.
func (s *cvService) UploadCV(ctx context.Context, p authz.Principal, targetUserID uuid.UUID, fileName string, data []byte) (*models.CV, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !authz.Allowed(p, authz.UploadTarget{UserID: targetUserID}, authz.CanUploadFor) {
		log.Printf("UploadCV: Forbidden attempt by user %s to upload for %s", p.UserID, targetUserID)
		return nil, fmt.Errorf("%w: cannot upload a CV for another user", ErrForbidden)
	}

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s for upload", targetUserID))
	}

	// Only files that pass the type and size checks count against the quota.
	if err := s.store.Validate(data, fileName, s.constraints); err != nil {
		return nil, storeError(err)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.AllowUpload(ctx, targetUserID)
		if err != nil {
			log.Printf("UploadCV: Limiter error for user %s: %v", targetUserID, err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: daily upload quota reached", ErrRateLimited)
		}
	}

	asset, err := s.store.Store(ctx, data, fileName, s.constraints)
	if err != nil {
		s.refund(ctx, targetUserID)
		return nil, storeError(err)
	}

	cv, err := s.cvRepo.Create(ctx, targetUserID, fileName, asset.Locator)
	if err != nil {
		log.Printf("UploadCV: Error creating CV record, removing asset %s: %v", asset.Key, err)
		cleanupCtx := context.WithoutCancel(ctx)
		if delErr := s.store.Delete(cleanupCtx, asset.Key); delErr != nil {
			log.Printf("UploadCV: Failed to remove orphaned asset %s: %v", asset.Key, delErr)
		}
		s.refund(cleanupCtx, targetUserID)
		return nil, mapRepoError(err, "creating CV record")
	}

	log.Printf("UploadCV: User %s uploaded CV %s (%s)", targetUserID, cv.ID, asset.Key)
	return cv, nil
}

func (s *cvService) refund(ctx context.Context, userID uuid.UUID) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Refund(ctx, userID); err != nil {
		log.Printf("UploadCV: Could not refund upload slot for user %s: %v", userID, err)
	}
}

func storeError(err error) error {
	switch {
	case errors.Is(err, assets.ErrInvalidAsset):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, assets.ErrStorageUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return fmt.Errorf("internal error storing CV: %w", err)
}

func (s *cvService) ListCVs(ctx context.Context, p authz.Principal) ([]models.CV, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	cvs, err := s.cvRepo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing CVs for user %s", p.UserID))
	}
	return cvs, nil
}

// GetActiveCV returns ErrNotFound unless the CV belongs to userID and is ACTIVE.
func (s *cvService) GetActiveCV(ctx context.Context, userID, cvID uuid.UUID) (*models.CV, error) {
	cv, err := s.cvRepo.GetActive(ctx, userID, cvID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching active CV %s", cvID))
	}
	return cv, nil
}

// DeactivateCV marks a CV INACTIVE. CVs owned by someone else look missing.
func (s *cvService) DeactivateCV(ctx context.Context, p authz.Principal, cvID uuid.UUID) (*models.CV, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	cv, err := s.cvRepo.GetByID(ctx, cvID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching CV %s", cvID))
	}
	if !authz.Allowed(p, cv, authz.CanManageCV) {
		log.Printf("DeactivateCV: User %s attempted to deactivate CV %s owned by %s", p.UserID, cvID, cv.UserID)
		return nil, fmt.Errorf("%w: CV %s", ErrNotFound, cvID)
	}
	if cv.Status == models.CVStatusInactive {
		return cv, nil
	}

	updated, err := s.cvRepo.UpdateStatus(ctx, cvID, models.CVStatusInactive)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("deactivating CV %s", cvID))
	}
	return updated, nil
}
