package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airo-kpi/redo-service/internal/domain"
)

const defaultCandidateChunkSize = 500

// ticketColumns is the shared projection for service ticket reads. Vendor and
// system identifiers are decoded to their display labels in SQL, matching the
// labels the KPI spreadsheet reports.
const ticketColumns = `
        t.ticket_no, t.account_no, t.product_type, t.service_type, t.model_no, t.serial_no,
        CASE t.vendor_id WHEN 0 THEN 'Unknown' WHEN 1 THEN 'GSPN' WHEN 2 THEN 'SQ' WHEN 3 THEN 'BF'
            WHEN 4 THEN 'Asurion' WHEN 5 THEN 'AIG' WHEN 6 THEN 'Assurant' WHEN 7 THEN 'ST'
            WHEN 8 THEN 'LW' ELSE 'Unknown' END AS vendor,
        CASE t.system_id WHEN 0 THEN 'None' WHEN 1 THEN 'IT' WHEN 2 THEN 'GSPN' WHEN 3 THEN 'SQ'
            WHEN 4 THEN 'BF' WHEN 5 THEN 'SVC_BENCH' WHEN 6 THEN 'SVC_POWER' ELSE 'None' END AS system,
        t.warranty_status, t.status_code, t.brand,
        u.first_name || ' ' || u.last_name AS tech_name,
        t.assign_time, t.complete_time,
        to_char(t.complete_time, 'YYYY_MM') AS complete_month`

// TicketReportRepository reads service tickets from the upstream ticketing store.
type TicketReportRepository interface {
	// FetchCompletedWindow returns in-home GSPN tickets completed inside the
	// date range. An empty account list applies no account filter.
	FetchCompletedWindow(ctx context.Context, start, end time.Time, accountNumbers []string) ([]domain.ServiceTicket, error)
	// FetchCandidates returns records for the given ticket numbers completed
	// inside the date range, chunking the IN list as needed.
	FetchCandidates(ctx context.Context, ticketNos []int64, start, end time.Time) ([]domain.RedoCandidate, error)
}

type ticketReportRepository struct {
	pool      *pgxpool.Pool
	chunkSize int
}

// NewTicketReportRepository instantiates the repository.
func NewTicketReportRepository(pool *pgxpool.Pool, chunkSize int) TicketReportRepository {
	if chunkSize <= 0 {
		chunkSize = defaultCandidateChunkSize
	}
	return &ticketReportRepository{pool: pool, chunkSize: chunkSize}
}

func (r *ticketReportRepository) FetchCompletedWindow(ctx context.Context, start, end time.Time, accountNumbers []string) ([]domain.ServiceTicket, error) {
	base := fmt.Sprintf(`SELECT %s
        FROM service_tickets t
        INNER JOIN technicians u ON u.tech_id = t.tech_id
        WHERE t.complete_time BETWEEN $1 AND $2
          AND t.vendor_id = %d AND t.system_id = %d AND t.service_type = 'IH'`,
		ticketColumns, domain.VendorIDGSPN, domain.SystemIDGSPN)

	args := []any{start, end}
	clauses := []string{}

	switch len(accountNumbers) {
	case 0:
	case 1:
		args = append(args, accountNumbers[0])
		clauses = append(clauses, fmt.Sprintf("t.account_no = $%d", len(args)))
	default:
		placeholders := make([]string, len(accountNumbers))
		for i, account := range accountNumbers {
			args = append(args, account)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.account_no IN (%s)", strings.Join(placeholders, ",")))
	}

	query := base
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.ticket_no"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServiceTickets(rows)
}

func (r *ticketReportRepository) FetchCandidates(ctx context.Context, ticketNos []int64, start, end time.Time) ([]domain.RedoCandidate, error) {
	if len(ticketNos) == 0 {
		return nil, nil
	}

	var result []domain.RedoCandidate
	for _, chunk := range chunkTicketNos(ticketNos, r.chunkSize) {
		records, err := r.fetchCandidateChunk(ctx, chunk, start, end)
		if err != nil {
			return nil, err
		}
		result = append(result, records...)
	}
	return result, nil
}

func (r *ticketReportRepository) fetchCandidateChunk(ctx context.Context, ticketNos []int64, start, end time.Time) ([]domain.RedoCandidate, error) {
	args := []any{start, end}
	placeholders := make([]string, len(ticketNos))
	for i, no := range ticketNos {
		args = append(args, no)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(`SELECT t.ticket_no, t.assign_time, t.complete_time, t.status_code, t.warranty_status,
               u.first_name || ' ' || u.last_name AS tech_name
        FROM service_tickets t
        INNER JOIN technicians u ON u.tech_id = t.tech_id
        WHERE t.complete_time BETWEEN $1 AND $2
          AND t.ticket_no IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RedoCandidate
	for rows.Next() {
		var candidate domain.RedoCandidate
		var assignTime, completeTime *time.Time
		if err := rows.Scan(
			&candidate.TicketNo,
			&assignTime,
			&completeTime,
			&candidate.StatusCode,
			&candidate.WarrantyStatus,
			&candidate.TechName,
		); err != nil {
			return nil, err
		}
		if assignTime != nil {
			candidate.AssignDate = *assignTime
		}
		if completeTime != nil {
			candidate.CompleteDate = *completeTime
		}
		result = append(result, candidate)
	}
	return result, rows.Err()
}

func scanServiceTickets(rows pgx.Rows) ([]domain.ServiceTicket, error) {
	var result []domain.ServiceTicket
	for rows.Next() {
		var ticket domain.ServiceTicket
		var assignTime, completeTime *time.Time
		if err := rows.Scan(
			&ticket.TicketNo,
			&ticket.AccountNo,
			&ticket.ProductType,
			&ticket.ServiceType,
			&ticket.ModelNo,
			&ticket.SerialNo,
			&ticket.Vendor,
			&ticket.System,
			&ticket.WarrantyStatus,
			&ticket.StatusCode,
			&ticket.Brand,
			&ticket.TechName,
			&assignTime,
			&completeTime,
			&ticket.CompleteMonth,
		); err != nil {
			return nil, err
		}
		if assignTime != nil {
			ticket.AssignDate = *assignTime
		}
		if completeTime != nil {
			ticket.CompleteDate = *completeTime
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func chunkTicketNos(ticketNos []int64, size int) [][]int64 {
	if size <= 0 {
		size = defaultCandidateChunkSize
	}
	var chunks [][]int64
	for start := 0; start < len(ticketNos); start += size {
		end := start + size
		if end > len(ticketNos) {
			end = len(ticketNos)
		}
		chunks = append(chunks, ticketNos[start:end])
	}
	return chunks
}
