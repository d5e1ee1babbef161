package postgres

import (
	"context"
	"errors"

	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories translate into storage errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the repositories need.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var jobColumns = []string{
	"id", "company_id", "title", "description", "requirements",
	"location", "salary", "status", "created_at", "updated_at",
}

// buildCompanyJobsQuery lists a company's jobs newest first.
func buildCompanyJobsQuery(companyID uuid.UUID) (string, []any) {
	d := entsql.Dialect(dialect.Postgres)
	t := d.Table("jobs")
	cols := make([]string, 0, len(jobColumns))
	for _, c := range jobColumns {
		cols = append(cols, t.C(c))
	}
	return d.Select(cols...).
		From(t).
		Where(entsql.EQ(t.C("company_id"), companyID)).
		OrderExpr(entsql.Expr(t.C("created_at") + " DESC")).
		Query()
}

// buildOpenJobsQuery constructs the public board query: OPEN jobs joined with the company name.
func buildOpenJobsQuery(req *dto.ListOpenJobsRequest) (string, []any) {
	d := entsql.Dialect(dialect.Postgres)
	j := d.Table("jobs").As("j")
	c := d.Table("companies").As("c")

	cols := make([]string, 0, len(jobColumns)+1)
	for _, col := range jobColumns {
		cols = append(cols, j.C(col))
	}
	cols = append(cols, entsql.As(c.C("name"), "company_name"))

	preds := []*entsql.Predicate{entsql.EQ(j.C("status"), string(models.JobStatusOpen))}
	if req.Location != "" {
		preds = append(preds, entsql.ContainsFold(j.C("location"), req.Location))
	}

	return d.Select(cols...).
		From(j).
		Join(c).On(j.C("company_id"), c.C("id")).
		Where(entsql.And(preds...)).
		OrderExpr(entsql.Expr(j.C("created_at") + " DESC")).
		Limit(req.Limit).
		Offset(req.Offset).
		Query()
}
