package dto

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/airo-kpi/redo-service/internal/domain"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	accountPattern = regexp.MustCompile(`^\d+$`)
)

// RedoReportRequest payload for POST /reports/redo.
type RedoReportRequest struct {
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	AccountNumbers []string `json:"account_numbers"`
}

// Validate checks date formats and account numbers at the transport boundary
// and returns the parsed range plus sanitized accounts.
func (r RedoReportRequest) Validate() (start, end time.Time, accounts []string, err error) {
	start, err = parseDate("start_date", r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	end, err = parseDate("end_date", r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, nil, apperrors.NewValidationError("end_date must not precede start_date", nil)
	}

	for _, account := range r.AccountNumbers {
		account = strings.TrimSpace(account)
		if account == "" {
			continue
		}
		if !accountPattern.MatchString(account) {
			return time.Time{}, time.Time{}, nil, apperrors.NewValidationError("account numbers must be numeric", map[string]any{
				"account_no": account,
			})
		}
		accounts = append(accounts, account)
	}
	return start, end, accounts, nil
}

func parseDate(field, value string) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("%s must be in YYYY-MM-DD format", field), map[string]any{
			field: value,
		})
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("%s is not a valid calendar date", field), map[string]any{
			field: value,
		})
	}
	return parsed, nil
}

// RedoReportResponse carries the generated spreadsheet, base64 encoded.
type RedoReportResponse struct {
	FileName      string `json:"filename"`
	File          string `json:"file"`
	TicketCount   int    `json:"ticket_count"`
	RedoPairCount int    `json:"redo_pair_count"`
}

// ReportRunResponse summarizes one audit entry.
type ReportRunResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	AccountCount  int       `json:"account_count"`
	TicketCount   int       `json:"ticket_count"`
	RedoPairCount int       `json:"redo_pair_count"`
	Status        string    `json:"status"`
	FailureCode   *string   `json:"failure_code,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReportRunResponse maps the domain record.
func NewReportRunResponse(run domain.ReportRun) ReportRunResponse {
	return ReportRunResponse{
		ID:            run.ID,
		ClientID:      run.ClientID,
		StartDate:     run.StartDate.Format(dateLayout),
		EndDate:       run.EndDate.Format(dateLayout),
		AccountCount:  run.AccountCount,
		TicketCount:   run.TicketCount,
		RedoPairCount: run.RedoPairCount,
		Status:        string(run.Status),
		FailureCode:   run.FailureCode,
		DurationMS:    run.DurationMS,
		CreatedAt:     run.CreatedAt,
	}
}
