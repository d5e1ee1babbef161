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

// CompanyRepo implements storage.CompanyRepository using PostgreSQL.
type CompanyRepo struct {
	db Querier
}

// NewCompanyRepo creates a new CompanyRepo.
func NewCompanyRepo(db *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{db: db}
}

func (r *CompanyRepo) WithTx(tx pgx.Tx) storage.CompanyRepository {
	return &CompanyRepo{db: tx}
}

var _ storage.CompanyRepository = (*CompanyRepo)(nil)

func (r *CompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT id, name, location, created_at FROM companies WHERE id = $1`

	var company models.Company
	err := r.db.QueryRow(ctx, query, id).Scan(&company.ID, &company.Name, &company.Location, &company.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error fetching company %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get company %s: %w", id, err)
	}
	return &company, nil
}

// GetForMember resolves the company a user manages. Users belonging to several
// companies get the one they joined first.
func (r *CompanyRepo) GetForMember(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	query := `
		SELECT c.id, c.name, c.location, c.created_at
		FROM companies c
		JOIN company_members m ON m.company_id = c.id
		WHERE m.user_id = $1
		ORDER BY m.created_at ASC, c.id ASC
		LIMIT 1
	`

	var company models.Company
	err := r.db.QueryRow(ctx, query, userID).Scan(&company.ID, &company.Name, &company.Location, &company.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("No company found for user %s\n", userID)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error resolving company for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to resolve company for user %s: %w", userID, err)
	}
	return &company, nil
}

func (r *CompanyRepo) ListMemberIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM company_members WHERE company_id = $1`, companyID)
	if err != nil {
		log.Printf("Error listing members of company %s: %v\n", companyID, err)
		return nil, fmt.Errorf("failed to list company members: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan company members: %w", err)
	}
	return ids, nil
}
