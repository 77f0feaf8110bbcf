package domain

import "time"

// Vendor and system identifiers as stored in the ticketing database. Redo
// reporting only covers in-home GSPN work.
const (
	VendorIDGSPN = 1
	SystemIDGSPN = 2
)

// ServiceTicket is one completed field-service visit fetched from the
// ticketing store. Week and LinkedNextTicket are derived per request and
// never written back.
type ServiceTicket struct {
	TicketNo       int64
	AccountNo      string
	ProductType    string
	ServiceType    string
	ModelNo        string
	SerialNo       string
	Vendor         string
	System         string
	WarrantyStatus string
	StatusCode     int
	Brand          string
	TechName       string
	AssignDate     time.Time
	CompleteDate   time.Time
	CompleteMonth  string
	Week           int
	// LinkedNextTicket points at the next more-recent ticket of the same unit
	// when the unit's ticket group matched the redo window; nil otherwise.
	LinkedNextTicket *int64
}

// RedoCandidate is the record of a ticket referenced by a LinkedNextTicket
// annotation, fetched in a second pass.
type RedoCandidate struct {
	TicketNo       int64
	AssignDate     time.Time
	CompleteDate   time.Time
	StatusCode     int
	WarrantyStatus string
	TechName       string
}

// ReportRow pairs an annotated ticket with its resolved redo candidate. Redo
// is nil when the ticket carries no link or the link matched no candidate.
type ReportRow struct {
	Ticket ServiceTicket
	Redo   *RedoCandidate
}
