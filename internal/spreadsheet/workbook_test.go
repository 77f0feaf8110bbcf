package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/airo-kpi/redo-service/internal/domain"
)

func TestBuildRedoWorkbook(t *testing.T) {
	link := int64(200)
	rows := []domain.ReportRow{
		{
			Ticket: domain.ServiceTicket{
				TicketNo:         100,
				AccountNo:        "1234567890",
				ServiceType:      "IH",
				SerialNo:         "SN-1",
				WarrantyStatus:   "IW",
				StatusCode:       60,
				TechName:         "Pat Doe",
				AssignDate:       time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC),
				CompleteDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				CompleteMonth:    "2024_01",
				Week:             2,
				LinkedNextTicket: &link,
			},
			Redo: &domain.RedoCandidate{
				TicketNo:       200,
				CompleteDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				StatusCode:     60,
				WarrantyStatus: "IW",
				TechName:       "Sam Lee",
			},
		},
		{
			Ticket: domain.ServiceTicket{TicketNo: 200, SerialNo: "SN-1", ServiceType: "IH"},
		},
	}

	book, err := BuildRedoWorkbook(rows)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(book))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	cell := func(ref string) string {
		t.Helper()
		val, err := file.GetCellValue(SheetName, ref)
		if err != nil {
			t.Fatalf("read %s: %v", ref, err)
		}
		return val
	}

	if got := cell("A1"); got != "TicketNo" {
		t.Errorf("A1 = %q, want TicketNo", got)
	}
	if got := cell("A2"); got != "100" {
		t.Errorf("A2 = %q, want 100", got)
	}
	if got := cell("N2"); got != "01/10/2024" {
		t.Errorf("complete date N2 = %q", got)
	}
	if got := cell("Q2"); got != "200" {
		t.Errorf("linked next ticket Q2 = %q, want 200", got)
	}
	if got := cell("R2"); got != "200" {
		t.Errorf("redo ticket R2 = %q, want 200", got)
	}
	if got := cell("W2"); got != "Sam Lee" {
		t.Errorf("redo tech W2 = %q, want Sam Lee", got)
	}
	if got := cell("R3"); got != "" {
		t.Errorf("row without redo must leave joined cells empty, got %q", got)
	}
}

func TestFileName(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if got := FileName(start, end); got != "redo_report_2024-01-15_2024-03-31.xlsx" {
		t.Fatalf("file name = %q", got)
	}
}
