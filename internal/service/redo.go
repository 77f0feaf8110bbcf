package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/airo-kpi/redo-service/internal/domain"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

// DefaultRedoWindowDays is the lookback applied when no window is configured.
const DefaultRedoWindowDays = 90

// Eligibility predicate for redo analysis: in-home service, in-warranty
// classes, completed status.
const (
	eligibleServiceType = "IH"
	eligibleStatusCode  = 60
)

var eligibleWarrantyStatuses = map[string]struct{}{
	"IW":  {},
	"YES": {},
	"POP": {},
}

// FilterEligible reduces raw tickets to those in scope for redo analysis.
// Retained tickets get their assign and complete dates truncated to calendar
// days and a derived ISO week number of the complete date. The function is
// pure and idempotent.
func FilterEligible(tickets []domain.ServiceTicket) ([]domain.ServiceTicket, error) {
	result := make([]domain.ServiceTicket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.ServiceType != eligibleServiceType {
			continue
		}
		if _, ok := eligibleWarrantyStatuses[ticket.WarrantyStatus]; !ok {
			continue
		}
		if ticket.StatusCode != eligibleStatusCode {
			continue
		}
		if ticket.TicketNo == 0 || ticket.SerialNo == "" {
			return nil, apperrors.NewDataShapeError("ticket missing required identifier fields", map[string]any{
				"ticket_no": ticket.TicketNo,
				"serial_no": ticket.SerialNo,
			})
		}
		ticket.AssignDate = truncateToDay(ticket.AssignDate)
		ticket.CompleteDate = truncateToDay(ticket.CompleteDate)
		_, ticket.Week = ticket.CompleteDate.ISOWeek()
		result = append(result, ticket)
	}
	return result, nil
}

// GroupFailure records a unit group whose dates could not be evaluated.
type GroupFailure struct {
	SerialNo string
	Err      error
}

// DetectResult carries the annotated tickets plus any per-group failures.
// Failed groups are left unannotated; the remaining groups are unaffected.
type DetectResult struct {
	Tickets []domain.ServiceTicket
	Failed  []GroupFailure
}

// DetectRedos annotates tickets whose unit shows a repeat-visit pattern.
//
// Tickets are grouped by serial number and each group is sorted by ticket
// number descending; ticket numbers increase monotonically with creation time
// and are the chronological ordering used here, never the timestamp fields.
// The newest ticket's assign date opens a lookback window of windowDays. The
// window is half-open: a complete date equal to the window start qualifies, a
// complete date equal to the assign date does not. If any ticket in the group
// completes inside the window, every ticket in the group is linked to the next
// more-recent ticket number; the newest ticket keeps a nil link. The linking
// is all-or-nothing per group, not per qualifying pair.
func DetectRedos(tickets []domain.ServiceTicket, windowDays int) DetectResult {
	if windowDays <= 0 {
		windowDays = DefaultRedoWindowDays
	}

	result := DetectResult{Tickets: make([]domain.ServiceTicket, len(tickets))}
	copy(result.Tickets, tickets)

	groups := make(map[string][]*domain.ServiceTicket)
	serials := make([]string, 0)
	for i := range result.Tickets {
		ticket := &result.Tickets[i]
		if _, seen := groups[ticket.SerialNo]; !seen {
			serials = append(serials, ticket.SerialNo)
		}
		groups[ticket.SerialNo] = append(groups[ticket.SerialNo], ticket)
	}

	for _, serial := range serials {
		group := groups[serial]
		if len(group) == 0 {
			continue
		}
		if err := annotateGroup(group, windowDays); err != nil {
			result.Failed = append(result.Failed, GroupFailure{SerialNo: serial, Err: err})
		}
	}
	return result
}

func annotateGroup(group []*domain.ServiceTicket, windowDays int) error {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].TicketNo > group[j].TicketNo
	})

	if len(group) < 2 {
		return nil
	}

	checkDate := group[0].AssignDate
	if checkDate.IsZero() {
		return apperrors.NewInvalidTemporalValue("newest ticket has no assign date", map[string]any{
			"ticket_no": group[0].TicketNo,
		})
	}
	windowStart := checkDate.AddDate(0, 0, -windowDays)

	matched := false
	for _, ticket := range group {
		if ticket.CompleteDate.IsZero() {
			return apperrors.NewInvalidTemporalValue("ticket has no complete date", map[string]any{
				"ticket_no": ticket.TicketNo,
			})
		}
		if inRedoWindow(ticket.CompleteDate, windowStart, checkDate) {
			matched = true
		}
	}
	if !matched {
		return nil
	}

	for i := 1; i < len(group); i++ {
		next := group[i-1].TicketNo
		group[i].LinkedNextTicket = &next
	}
	return nil
}

// inRedoWindow reports whether complete falls in [windowStart, checkDate).
func inRedoWindow(complete, windowStart, checkDate time.Time) bool {
	return !complete.Before(windowStart) && complete.Before(checkDate)
}

// LinkedTicketNos returns the sorted distinct ticket numbers referenced by
// LinkedNextTicket annotations.
func LinkedTicketNos(tickets []domain.ServiceTicket) []int64 {
	seen := make(map[int64]struct{})
	var result []int64
	for _, ticket := range tickets {
		if ticket.LinkedNextTicket == nil {
			continue
		}
		no := *ticket.LinkedNextTicket
		if _, ok := seen[no]; ok {
			continue
		}
		seen[no] = struct{}{}
		result = append(result, no)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// MergeCandidates left-joins tickets to candidates on the LinkedNextTicket
// annotation. Every input ticket yields exactly one row; tickets without a
// link, or whose link has no matching candidate, carry a nil Redo.
func MergeCandidates(tickets []domain.ServiceTicket, candidates []domain.RedoCandidate) []domain.ReportRow {
	byTicketNo := make(map[int64]domain.RedoCandidate, len(candidates))
	for _, candidate := range candidates {
		byTicketNo[candidate.TicketNo] = candidate
	}

	rows := make([]domain.ReportRow, 0, len(tickets))
	for _, ticket := range tickets {
		row := domain.ReportRow{Ticket: ticket}
		if ticket.LinkedNextTicket != nil {
			if candidate, ok := byTicketNo[*ticket.LinkedNextTicket]; ok {
				matched := candidate
				row.Redo = &matched
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func truncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (f GroupFailure) String() string {
	return fmt.Sprintf("serial %s: %v", f.SerialNo, f.Err)
}
