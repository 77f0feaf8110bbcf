package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/airo-kpi/redo-service/internal/config"
	"github.com/airo-kpi/redo-service/internal/domain"
	"github.com/airo-kpi/redo-service/internal/events"
	"github.com/airo-kpi/redo-service/internal/observability"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

type stubTicketRepo struct {
	tickets      []domain.ServiceTicket
	candidates   []domain.RedoCandidate
	fetchErr     error
	candidateErr error
	gotTicketNos []int64
}

func (s *stubTicketRepo) FetchCompletedWindow(ctx context.Context, start, end time.Time, accounts []string) ([]domain.ServiceTicket, error) {
	return s.tickets, s.fetchErr
}

func (s *stubTicketRepo) FetchCandidates(ctx context.Context, ticketNos []int64, start, end time.Time) ([]domain.RedoCandidate, error) {
	s.gotTicketNos = ticketNos
	return s.candidates, s.candidateErr
}

func newTestReportService(repo *stubTicketRepo, dispatcher events.Dispatcher) *ReportService {
	return NewReportService(config.ReportConfig{RedoWindowDays: 90}, ReportDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
}

func testInput() ReportInput {
	return ReportInput{
		ClientID:  "kpi-dashboard",
		StartDate: day(2024, 1, 1),
		EndDate:   day(2024, 3, 31),
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestRunRedoReportProducesWorkbook(t *testing.T) {
	repo := &stubTicketRepo{
		tickets: []domain.ServiceTicket{
			eligibleTicket(100, "S1", day(2023, 12, 20), day(2024, 1, 10)),
			eligibleTicket(200, "S1", day(2024, 3, 1), day(2024, 3, 5)),
		},
		candidates: []domain.RedoCandidate{
			{TicketNo: 200, TechName: "Pat Doe"},
		},
	}
	dispatcher := events.NewInMemoryDispatcher()
	var completed *events.ReportCompletedPayload
	dispatcher.Subscribe(events.EventReportCompleted, func(ctx context.Context, event events.Event) error {
		payload := event.Payload.(events.ReportCompletedPayload)
		completed = &payload
		return nil
	})

	svc := newTestReportService(repo, dispatcher)
	output, err := svc.RunRedoReport(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.RedoPairCount != 1 {
		t.Errorf("redo pair count = %d, want 1", output.RedoPairCount)
	}
	if output.TicketCount != 2 {
		t.Errorf("ticket count = %d, want 2", output.TicketCount)
	}
	if output.FileName != "redo_report_2024-01-01_2024-03-31.xlsx" {
		t.Errorf("unexpected file name %q", output.FileName)
	}
	book, err := base64.StdEncoding.DecodeString(output.FileBase64)
	if err != nil {
		t.Fatalf("file is not valid base64: %v", err)
	}
	if len(book) == 0 {
		t.Fatal("workbook is empty")
	}
	if len(repo.gotTicketNos) != 1 || repo.gotTicketNos[0] != 200 {
		t.Errorf("candidate fetch got %v, want [200]", repo.gotTicketNos)
	}
	if completed == nil {
		t.Fatal("report_completed event not published")
	}
	if completed.RedoPairCount != 1 || completed.TicketCount != 2 {
		t.Errorf("completed payload counts = %+v", completed)
	}
}

func TestRunRedoReportNoInputData(t *testing.T) {
	svc := newTestReportService(&stubTicketRepo{}, nil)
	_, err := svc.RunRedoReport(context.Background(), testInput())
	if code := domainCode(t, err); code != "NO_INPUT_DATA" {
		t.Fatalf("code = %s, want NO_INPUT_DATA", code)
	}
}

func TestRunRedoReportNoRedoPairs(t *testing.T) {
	repo := &stubTicketRepo{
		tickets: []domain.ServiceTicket{
			eligibleTicket(100, "S1", day(2024, 3, 1), day(2024, 3, 5)),
		},
	}
	svc := newTestReportService(repo, nil)
	_, err := svc.RunRedoReport(context.Background(), testInput())
	if code := domainCode(t, err); code != "EMPTY_RESULT" {
		t.Fatalf("code = %s, want EMPTY_RESULT", code)
	}
}

func TestRunRedoReportEmptyCandidateFetch(t *testing.T) {
	repo := &stubTicketRepo{
		tickets: []domain.ServiceTicket{
			eligibleTicket(100, "S1", day(2023, 12, 20), day(2024, 1, 10)),
			eligibleTicket(200, "S1", day(2024, 3, 1), day(2024, 3, 5)),
		},
	}
	svc := newTestReportService(repo, nil)
	_, err := svc.RunRedoReport(context.Background(), testInput())
	if code := domainCode(t, err); code != "EMPTY_RESULT" {
		t.Fatalf("code = %s, want EMPTY_RESULT", code)
	}
}

func TestRunRedoReportFetchFailure(t *testing.T) {
	repo := &stubTicketRepo{fetchErr: errors.New("connection refused")}
	dispatcher := events.NewInMemoryDispatcher()
	var failed *events.ReportFailedPayload
	dispatcher.Subscribe(events.EventReportFailed, func(ctx context.Context, event events.Event) error {
		payload := event.Payload.(events.ReportFailedPayload)
		failed = &payload
		return nil
	})

	svc := newTestReportService(repo, dispatcher)
	_, err := svc.RunRedoReport(context.Background(), testInput())
	if code := domainCode(t, err); code != "FETCH_FAILED" {
		t.Fatalf("code = %s, want FETCH_FAILED", code)
	}
	if failed == nil {
		t.Fatal("report_failed event not published")
	}
	if failed.Stage != "fetch" {
		t.Errorf("failure stage = %s, want fetch", failed.Stage)
	}
}
