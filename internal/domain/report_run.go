package domain

import "time"

// ReportRunStatus enumerates terminal states of a report run.
type ReportRunStatus string

const (
	ReportRunCompleted ReportRunStatus = "COMPLETED"
	ReportRunFailed    ReportRunStatus = "FAILED"
)

// ReportRun is the audit record persisted for every redo report request.
type ReportRun struct {
	ID            string
	ClientID      string
	StartDate     time.Time
	EndDate       time.Time
	AccountCount  int
	TicketCount   int
	RedoPairCount int
	Status        ReportRunStatus
	FailureCode   *string
	DurationMS    int64
	CreatedAt     time.Time
}
