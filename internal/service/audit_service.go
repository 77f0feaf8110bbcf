package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/airo-kpi/redo-service/internal/domain"
	"github.com/airo-kpi/redo-service/internal/events"
	"github.com/airo-kpi/redo-service/internal/repository"
)

// AuditService persists an audit record for every report run outcome.
type AuditService struct {
	dispatcher events.Dispatcher
	runs       repository.ReportRunRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, runs repository.ReportRunRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		runs:       runs,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to report lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventReportCompleted, a.handleReportCompleted)
	a.dispatcher.Subscribe(events.EventReportFailed, a.handleReportFailed)
}

func (a *AuditService) handleReportCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportCompletedPayload)
	if !ok {
		return nil
	}
	run := &domain.ReportRun{
		ID:            event.RunID,
		ClientID:      event.ClientID,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		AccountCount:  payload.AccountCount,
		TicketCount:   payload.TicketCount,
		RedoPairCount: payload.RedoPairCount,
		Status:        domain.ReportRunCompleted,
		DurationMS:    payload.DurationMS,
	}
	if err := a.runs.Insert(ctx, run); err != nil {
		a.logger.Warn("failed to record report run", zap.String("run_id", event.RunID), zap.Error(err))
		return err
	}
	a.logger.Info("report run recorded",
		zap.String("run_id", event.RunID),
		zap.Int("redo_pairs", payload.RedoPairCount))
	return nil
}

func (a *AuditService) handleReportFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportFailedPayload)
	if !ok {
		return nil
	}
	code := payload.Code
	run := &domain.ReportRun{
		ID:           event.RunID,
		ClientID:     event.ClientID,
		StartDate:    payload.StartDate,
		EndDate:      payload.EndDate,
		AccountCount: payload.AccountCount,
		Status:       domain.ReportRunFailed,
		FailureCode:  &code,
		DurationMS:   payload.DurationMS,
	}
	if err := a.runs.Insert(ctx, run); err != nil {
		a.logger.Warn("failed to record report failure", zap.String("run_id", event.RunID), zap.Error(err))
		return err
	}
	a.logger.Info("report failure recorded",
		zap.String("run_id", event.RunID),
		zap.String("stage", payload.Stage),
		zap.String("code", payload.Code))
	return nil
}
