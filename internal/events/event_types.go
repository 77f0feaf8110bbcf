package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportRequested EventType = "report_requested"
	EventReportCompleted EventType = "report_completed"
	EventReportFailed    EventType = "report_failed"
)

// Event represents a report lifecycle event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	ClientID  string      `json:"client_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportRequestedPayload payload.
type ReportRequestedPayload struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	AccountCount int       `json:"account_count"`
}

// ReportCompletedPayload payload.
type ReportCompletedPayload struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	AccountCount  int       `json:"account_count"`
	TicketCount   int       `json:"ticket_count"`
	RedoPairCount int       `json:"redo_pair_count"`
	FileName      string    `json:"file_name"`
	DurationMS    int64     `json:"duration_ms"`
}

// ReportFailedPayload payload.
type ReportFailedPayload struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	AccountCount int       `json:"account_count"`
	Stage        string    `json:"stage"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	DurationMS   int64     `json:"duration_ms"`
}
