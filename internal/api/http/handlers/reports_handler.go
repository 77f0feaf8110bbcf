package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/airo-kpi/redo-service/internal/api/dto"
	"github.com/airo-kpi/redo-service/internal/auth"
	"github.com/airo-kpi/redo-service/internal/domain"
	"github.com/airo-kpi/redo-service/internal/service"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

// ReportRunner abstracts the report service for handler tests.
type ReportRunner interface {
	RunRedoReport(ctx context.Context, input service.ReportInput) (*service.ReportOutput, error)
	ListRecentRuns(ctx context.Context, limit int) ([]domain.ReportRun, error)
}

// ReportsHandler manages redo report endpoints.
type ReportsHandler struct {
	service ReportRunner
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService ReportRunner) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// GenerateRedo POST /reports/redo.
func (h *ReportsHandler) GenerateRedo(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("client required")
	}

	var req dto.RedoReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	start, end, accounts, err := req.Validate()
	if err != nil {
		return err
	}

	output, err := h.service.RunRedoReport(c.UserContext(), service.ReportInput{
		ClientID:       principal.ClientID,
		StartDate:      start,
		EndDate:        end,
		AccountNumbers: accounts,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.RedoReportResponse{
		FileName:      output.FileName,
		File:          output.FileBase64,
		TicketCount:   output.TicketCount,
		RedoPairCount: output.RedoPairCount,
	})
}

// ListRuns GET /reports/redo/runs.
func (h *ReportsHandler) ListRuns(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("client required")
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		limit = parsed
	}

	runs, err := h.service.ListRecentRuns(c.UserContext(), limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.ReportRunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.NewReportRunResponse(run))
	}
	return c.JSON(fiber.Map{"data": items})
}
