// Package export renders booking reports as Excel workbooks.
package export

import (
	"fmt"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"ID", "Item ID", "Item", "Booker ID", "Start", "End", "Status"}

var statusColors = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFF2CC",
	models.StatusApproved: "#E2EFDA",
	models.StatusRejected: "#F8CBAD",
}

// Exporter builds the owner booking workbook in memory.
type Exporter struct {
	location *time.Location
	now      func() time.Time
}

func NewExporter(location *time.Location) *Exporter {
	if location == nil {
		location = time.UTC
	}
	return &Exporter{location: location, now: time.Now}
}

// ExportBookings writes one row per booking under a title naming the state filter.
func (e *Exporter) ExportBookings(bookings []*models.BookingDetails, state models.BookingState) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings: %s, generated %s",
		state, e.now().In(e.location).Format("2006-01-02 15:04")))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	if err := e.writeHeaders(f); err != nil {
		return nil, err
	}

	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = style
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID,
			b.ItemID,
			b.ItemName,
			b.BookerID,
			b.Start.In(e.location).Format("2006-01-02 15:04"),
			b.End.In(e.location).Format("2006-01-02 15:04"),
			string(b.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}

		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 10)
	_ = f.SetColWidth(sheetName, "C", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "G", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	metrics.ObserveExportRows(len(bookings))
	return buf.Bytes(), nil
}

func (e *Exporter) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A2", &row); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(headers), 2)
	return f.SetCellStyle(sheetName, "A2", lastCell, style)
}
