package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/airo-kpi/redo-service/internal/api/http"
	"github.com/airo-kpi/redo-service/internal/api/http/handlers"
	"github.com/airo-kpi/redo-service/internal/auth"
	"github.com/airo-kpi/redo-service/internal/domain"
	"github.com/airo-kpi/redo-service/internal/observability"
	"github.com/airo-kpi/redo-service/internal/service"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

type stubReportRunner struct {
	output   *service.ReportOutput
	runs     []domain.ReportRun
	err      error
	gotInput service.ReportInput
}

func (s *stubReportRunner) RunRedoReport(ctx context.Context, input service.ReportInput) (*service.ReportOutput, error) {
	s.gotInput = input
	return s.output, s.err
}

func (s *stubReportRunner) ListRecentRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	return s.runs, s.err
}

func newTestApp(t *testing.T, runner handlers.ReportRunner) (*fiber.App, string) {
	t.Helper()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	tokens := auth.NewTokenManager("test-secret", 60)
	middleware := auth.NewAuthMiddleware(tokens)
	handler := handlers.NewReportsHandler(runner)

	reports := app.Group("/reports", middleware.Handle)
	reports.Post("/redo", handler.GenerateRedo)
	reports.Get("/redo/runs", handler.ListRuns)

	token, _, err := tokens.GenerateToken("kpi-dashboard")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return app, token
}

func postRedo(t *testing.T, app *fiber.App, token, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/reports/redo", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestGenerateRedoRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t, &stubReportRunner{})
	resp := postRedo(t, app, "", `{"start_date":"2024-01-15","end_date":"2024-03-31"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGenerateRedoRejectsBadDates(t *testing.T) {
	app, token := newTestApp(t, &stubReportRunner{})
	resp := postRedo(t, app, token, `{"start_date":"15-01-2024","end_date":"2024-03-31"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestGenerateRedoReturnsSpreadsheet(t *testing.T) {
	runner := &stubReportRunner{
		output: &service.ReportOutput{
			RunID:         "run-1",
			FileName:      "redo_report_2024-01-15_2024-03-31.xlsx",
			FileBase64:    "UEsDBA==",
			TicketCount:   12,
			RedoPairCount: 3,
		},
	}
	app, token := newTestApp(t, runner)

	resp := postRedo(t, app, token, `{"start_date":"2024-01-15","end_date":"2024-03-31","account_numbers":["1234567890"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		FileName      string `json:"filename"`
		File          string `json:"file"`
		RedoPairCount int    `json:"redo_pair_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.FileName != runner.output.FileName {
		t.Errorf("filename = %q", body.FileName)
	}
	if body.File != runner.output.FileBase64 {
		t.Errorf("file = %q", body.File)
	}
	if body.RedoPairCount != 3 {
		t.Errorf("redo pair count = %d", body.RedoPairCount)
	}

	if runner.gotInput.ClientID != "kpi-dashboard" {
		t.Errorf("client id = %q", runner.gotInput.ClientID)
	}
	if len(runner.gotInput.AccountNumbers) != 1 || runner.gotInput.AccountNumbers[0] != "1234567890" {
		t.Errorf("accounts = %v", runner.gotInput.AccountNumbers)
	}
}

func TestGenerateRedoMapsEmptyResult(t *testing.T) {
	runner := &stubReportRunner{err: apperrors.NewEmptyResult("no redo pairs found in the requested range")}
	app, token := newTestApp(t, runner)

	resp := postRedo(t, app, token, `{"start_date":"2024-01-15","end_date":"2024-03-31"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "EMPTY_RESULT" {
		t.Fatalf("code = %s, want EMPTY_RESULT", code)
	}
}

func TestListRuns(t *testing.T) {
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	runner := &stubReportRunner{
		runs: []domain.ReportRun{
			{
				ID:            "run-1",
				ClientID:      "kpi-dashboard",
				StartDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				EndDate:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				TicketCount:   12,
				RedoPairCount: 3,
				Status:        domain.ReportRunCompleted,
				CreatedAt:     created,
			},
		},
	}
	app, token := newTestApp(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/reports/redo/runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID        string `json:"id"`
			StartDate string `json:"start_date"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("data length = %d, want 1", len(body.Data))
	}
	if body.Data[0].ID != "run-1" || body.Data[0].StartDate != "2024-01-15" || body.Data[0].Status != "COMPLETED" {
		t.Fatalf("unexpected run payload: %+v", body.Data[0])
	}
}
