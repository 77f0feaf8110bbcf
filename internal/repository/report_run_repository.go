package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airo-kpi/redo-service/internal/domain"
)

// ReportRunRepository persists report run audit records.
type ReportRunRepository interface {
	Insert(ctx context.Context, run *domain.ReportRun) error
	ListRecent(ctx context.Context, limit int) ([]domain.ReportRun, error)
}

type reportRunRepository struct {
	pool *pgxpool.Pool
}

// NewReportRunRepository instantiates the repository.
func NewReportRunRepository(pool *pgxpool.Pool) ReportRunRepository {
	return &reportRunRepository{pool: pool}
}

func (r *reportRunRepository) Insert(ctx context.Context, run *domain.ReportRun) error {
	const query = `
        INSERT INTO report_runs (id, client_id, start_date, end_date, account_count, ticket_count, redo_pair_count, status, failure_code, duration_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		run.ID,
		run.ClientID,
		run.StartDate,
		run.EndDate,
		run.AccountCount,
		run.TicketCount,
		run.RedoPairCount,
		run.Status,
		run.FailureCode,
		run.DurationMS,
	).Scan(&run.CreatedAt)
}

func (r *reportRunRepository) ListRecent(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, client_id, start_date, end_date, account_count, ticket_count, redo_pair_count, status, failure_code, duration_ms, created_at
        FROM report_runs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReportRuns(rows)
}

func scanReportRuns(rows pgx.Rows) ([]domain.ReportRun, error) {
	var result []domain.ReportRun
	for rows.Next() {
		var run domain.ReportRun
		if err := rows.Scan(
			&run.ID,
			&run.ClientID,
			&run.StartDate,
			&run.EndDate,
			&run.AccountCount,
			&run.TicketCount,
			&run.RedoPairCount,
			&run.Status,
			&run.FailureCode,
			&run.DurationMS,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}
