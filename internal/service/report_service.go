package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airo-kpi/redo-service/internal/config"
	"github.com/airo-kpi/redo-service/internal/domain"
	"github.com/airo-kpi/redo-service/internal/events"
	"github.com/airo-kpi/redo-service/internal/observability"
	"github.com/airo-kpi/redo-service/internal/repository"
	"github.com/airo-kpi/redo-service/internal/spreadsheet"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

// ReportService runs the redo report pipeline: fetch, filter, detect,
// resolve, merge, serialize.
type ReportService struct {
	tickets    repository.TicketReportRepository
	runs       repository.ReportRunRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.ReportConfig
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	TicketRepo repository.TicketReportRepository
	RunRepo    repository.ReportRunRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// ReportInput describes one report request.
type ReportInput struct {
	ClientID       string
	StartDate      time.Time
	EndDate        time.Time
	AccountNumbers []string
}

// ReportOutput is the generated report artifact.
type ReportOutput struct {
	RunID         string
	FileName      string
	FileBase64    string
	TicketCount   int
	RedoPairCount int
}

// NewReportService constructs the service.
func NewReportService(cfg config.ReportConfig, deps ReportDependencies) *ReportService {
	return &ReportService{
		tickets:    deps.TicketRepo,
		runs:       deps.RunRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
	}
}

// RunRedoReport executes one detection pass over freshly fetched tickets.
// Nothing is cached between calls.
func (s *ReportService) RunRedoReport(ctx context.Context, input ReportInput) (*ReportOutput, error) {
	runID := uuid.NewString()
	started := time.Now()

	s.publish(ctx, events.EventReportRequested, runID, input.ClientID, events.ReportRequestedPayload{
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		AccountCount: len(input.AccountNumbers),
	})

	output, err := s.runPipeline(ctx, runID, input)
	duration := time.Since(started)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		s.metrics.RecordReportFailure()
		s.publish(ctx, events.EventReportFailed, runID, input.ClientID, events.ReportFailedPayload{
			StartDate:    input.StartDate,
			EndDate:      input.EndDate,
			AccountCount: len(input.AccountNumbers),
			Stage:        stageForCode(domainErr.Code),
			Code:         domainErr.Code,
			Message:      domainErr.Message,
			DurationMS:   duration.Milliseconds(),
		})
		return nil, err
	}

	s.metrics.RecordReportRun(duration, output.TicketCount, output.RedoPairCount)
	s.publish(ctx, events.EventReportCompleted, runID, input.ClientID, events.ReportCompletedPayload{
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		AccountCount:  len(input.AccountNumbers),
		TicketCount:   output.TicketCount,
		RedoPairCount: output.RedoPairCount,
		FileName:      output.FileName,
		DurationMS:    duration.Milliseconds(),
	})
	return output, nil
}

func (s *ReportService) runPipeline(ctx context.Context, runID string, input ReportInput) (*ReportOutput, error) {
	s.logger.Info("fetching ticket window",
		zap.String("run_id", runID),
		zap.Time("start_date", input.StartDate),
		zap.Time("end_date", input.EndDate),
		zap.Int("account_count", len(input.AccountNumbers)))
	raw, err := s.tickets.FetchCompletedWindow(ctx, input.StartDate, input.EndDate, input.AccountNumbers)
	if err != nil {
		return nil, apperrors.NewFetchFailed(err)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewNoInputData("no tickets completed in the requested range")
	}

	eligible, err := FilterEligible(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("filtered tickets",
		zap.String("run_id", runID),
		zap.Int("raw", len(raw)),
		zap.Int("eligible", len(eligible)))

	detected := DetectRedos(eligible, s.cfg.RedoWindowDays)
	for _, failure := range detected.Failed {
		s.logger.Warn("redo detection skipped unit group",
			zap.String("run_id", runID),
			zap.String("serial_no", failure.SerialNo),
			zap.Error(failure.Err))
	}

	linked := LinkedTicketNos(detected.Tickets)
	if len(linked) == 0 {
		return nil, apperrors.NewEmptyResult("no redo pairs found in the requested range")
	}

	candidates, err := s.tickets.FetchCandidates(ctx, linked, input.StartDate, input.EndDate)
	if err != nil {
		return nil, apperrors.NewFetchFailed(err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewEmptyResult("no redo candidate tickets found in the requested range")
	}

	rows := MergeCandidates(detected.Tickets, candidates)
	book, err := spreadsheet.BuildRedoWorkbook(rows)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &ReportOutput{
		RunID:         runID,
		FileName:      spreadsheet.FileName(input.StartDate, input.EndDate),
		FileBase64:    base64.StdEncoding.EncodeToString(book),
		TicketCount:   len(rows),
		RedoPairCount: len(linked),
	}, nil
}

// ListRecentRuns returns the most recent audit entries.
func (s *ReportService) ListRecentRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	return s.runs.ListRecent(ctx, limit)
}

func (s *ReportService) publish(ctx context.Context, eventType events.EventType, runID, clientID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		ClientID:  clientID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func stageForCode(code string) string {
	switch code {
	case "FETCH_FAILED":
		return "fetch"
	case "NO_INPUT_DATA":
		return "fetch"
	case "DATA_SHAPE":
		return "filter"
	case "INVALID_TEMPORAL_VALUE":
		return "detect"
	case "EMPTY_RESULT":
		return "resolve"
	default:
		return "serialize"
	}
}
