package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CVRepo implements storage.CVRepository using PostgreSQL.
type CVRepo struct {
	db Querier
}

// NewCVRepo creates a new CVRepo.
func NewCVRepo(db *pgxpool.Pool) *CVRepo {
	return &CVRepo{db: db}
}

// WithTx creates a new CVRepo bound to the transaction.
func (r *CVRepo) WithTx(tx pgx.Tx) storage.CVRepository {
	return &CVRepo{db: tx}
}

var _ storage.CVRepository = (*CVRepo)(nil)

const cvColumns = `id, user_id, file_name, file_url, status, created_at`

func scanCV(row pgx.Row) (*models.CV, error) {
	var cv models.CV
	if err := row.Scan(&cv.ID, &cv.UserID, &cv.FileName, &cv.FileURL, &cv.Status, &cv.CreatedAt); err != nil {
		return nil, err
	}
	return &cv, nil
}

// Create inserts an ACTIVE CV record pointing at an already stored asset.
func (r *CVRepo) Create(ctx context.Context, userID uuid.UUID, fileName, fileURL string) (*models.CV, error) {
	query := `
		INSERT INTO cvs (id, user_id, file_name, file_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + cvColumns

	cv, err := scanCV(r.db.QueryRow(ctx, query, uuid.New(), userID, fileName, fileURL, models.CVStatusActive))
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			log.Printf("Error creating CV: unknown user %s: %v\n", userID, err)
			return nil, fmt.Errorf("failed to create CV: unknown user: %w", storage.ErrNotFound)
		}
		log.Printf("Error creating CV for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to create CV: %w", err)
	}

	log.Printf("CV created successfully with ID: %s", cv.ID)
	return cv, nil
}

func (r *CVRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CV, error) {
	cv, err := scanCV(r.db.QueryRow(ctx, `SELECT `+cvColumns+` FROM cvs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error fetching CV %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get CV %s: %w", id, err)
	}
	return cv, nil
}

// ListByUser returns the user's CVs newest first.
func (r *CVRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CV, error) {
	query := `SELECT ` + cvColumns + ` FROM cvs WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		log.Printf("Error querying CVs for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to query CVs: %w", err)
	}
	defer rows.Close()

	cvs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CV])
	if err != nil {
		log.Printf("Error scanning CVs for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to scan CVs: %w", err)
	}
	if cvs == nil {
		cvs = []models.CV{}
	}
	return cvs, nil
}

// GetActive returns the CV only if it is owned by userID and ACTIVE; anything else is ErrNotFound.
func (r *CVRepo) GetActive(ctx context.Context, userID, cvID uuid.UUID) (*models.CV, error) {
	query := `SELECT ` + cvColumns + ` FROM cvs WHERE id = $1 AND user_id = $2 AND status = $3`

	cv, err := scanCV(r.db.QueryRow(ctx, query, cvID, userID, models.CVStatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error fetching active CV %s for user %s: %v\n", cvID, userID, err)
		return nil, fmt.Errorf("failed to get active CV: %w", err)
	}
	return cv, nil
}

func (r *CVRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CVStatus) (*models.CV, error) {
	query := `UPDATE cvs SET status = $1 WHERE id = $2 RETURNING ` + cvColumns

	cv, err := scanCV(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating CV %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to update CV %s: %w", id, err)
	}
	return cv, nil
}
