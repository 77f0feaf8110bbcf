package spreadsheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/airo-kpi/redo-service/internal/domain"
)

// SheetName is the worksheet holding the redo report.
const SheetName = "Redo"

const dateLayout = "01/02/2006"

var headers = []string{
	"TicketNo", "AccountNo", "ProductType", "ServiceType", "ModelNo", "SerialNo",
	"Vendor", "System", "WarrantyStatus", "Status", "Brand", "TechName",
	"AssignDate", "CompleteDate", "CompleteMonth", "Week", "LinkedNextTicket",
	"RedoTicketNo", "RedoAssignDate", "RedoCompleteDate", "RedoStatus",
	"RedoWarrantyStatus", "RedoTechName",
}

// BuildRedoWorkbook serializes report rows into an xlsx workbook.
func BuildRedoWorkbook(rows []domain.ReportRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := file.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := rowValues(row)
		if err := file.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName builds the report file name from the requested date range.
func FileName(start, end time.Time) string {
	return fmt.Sprintf("redo_report_%s_%s.xlsx", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func rowValues(row domain.ReportRow) []any {
	ticket := row.Ticket
	values := []any{
		ticket.TicketNo,
		ticket.AccountNo,
		ticket.ProductType,
		ticket.ServiceType,
		ticket.ModelNo,
		ticket.SerialNo,
		ticket.Vendor,
		ticket.System,
		ticket.WarrantyStatus,
		ticket.StatusCode,
		ticket.Brand,
		ticket.TechName,
		formatDate(ticket.AssignDate),
		formatDate(ticket.CompleteDate),
		ticket.CompleteMonth,
		ticket.Week,
		formatLink(ticket.LinkedNextTicket),
	}
	if row.Redo == nil {
		return append(values, "", "", "", "", "", "")
	}
	return append(values,
		strconv.FormatInt(row.Redo.TicketNo, 10),
		formatDate(row.Redo.AssignDate),
		formatDate(row.Redo.CompleteDate),
		strconv.Itoa(row.Redo.StatusCode),
		row.Redo.WarrantyStatus,
		row.Redo.TechName,
	)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatLink(link *int64) string {
	if link == nil {
		return ""
	}
	return strconv.FormatInt(*link, 10)
}
