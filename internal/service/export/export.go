package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"oee-board/internal/storage"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheet = "Report"
)

var (
	ErrInvalidFormat = errors.New("invalid format, use csv or xlsx")
	ErrEmptyReport   = errors.New("report not found or empty")
)

type ExportStorage interface {
	ExportRows(ctx context.Context, reportID int64) ([]storage.ExportRow, error)
}

type ExportService struct {
	storage ExportStorage
}

func NewExportService(storage ExportStorage) *ExportService {
	return &ExportService{storage: storage}
}

// File is a rendered export ready to be sent as an attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Filename is the attachment name of a report export.
func Filename(reportID int64, format string) string {
	return fmt.Sprintf("report_%d_export.%s", reportID, format)
}

var columns = []string{
	"id", "report_id", "date", "shift", "operator", "machine", "part_number", "job",
	"good_count", "reject_count", "total_count", "run_time_min", "downtime_min", "planned_production_time_min",
	"oee", "availability", "performance", "quality", "target_count",
}

// values returns the row in column order. Metric cells are nil when the entry has no metric.
func values(r storage.ExportRow) []any {
	out := []any{
		r.ID, r.ReportID, r.Date, r.Shift, r.Operator, r.Machine, r.PartNumber, r.Job,
		r.GoodCount, r.RejectCount, r.TotalCount, r.RunTimeMin, r.DowntimeMin, r.PlannedProductionTimeMin,
		nil, nil, nil, nil, nil,
	}
	if m := r.Metric; m != nil {
		copy(out[14:], []any{m.OEE, m.Availability, m.Performance, m.Quality, m.TargetCount})
	}
	return out
}

// Export renders every entry of the report, joined with its metric, as CSV or XLSX.
func (s *ExportService) Export(ctx context.Context, reportID int64, format string) (*File, error) {
	const op = "service.export.Export"

	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%s: %q: %w", op, format, ErrInvalidFormat)
	}

	rows, err := s.storage.ExportRows(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, reportID, ErrEmptyReport)
	}

	var (
		data        []byte
		contentType string
	)
	if format == FormatCSV {
		data, err = writeCSV(rows)
		contentType = ContentTypeCSV
	} else {
		data, err = writeXLSX(rows)
		contentType = ContentTypeXLSX
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &File{Name: Filename(reportID, format), ContentType: contentType, Data: data}, nil
}

func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func writeCSV(rows []storage.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, r := range rows {
		for i, v := range values(r) {
			record[i] = cellText(v)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write entry id=%d: %w", r.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeXLSX(rows []storage.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, name := range columns {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(columns), 1), headerStyle)

	for i, r := range rows {
		rowNum := i + 2
		for col, v := range values(r) {
			if v == nil {
				continue
			}
			f.SetCellValue(sheet, cellName(col+1, rowNum), v)
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	f.SetColWidth(sheet, "C", "H", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}
