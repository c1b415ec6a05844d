package upload

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"oee-board/internal/storage"
)

var today = time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

func TestParse_CSVAliases(t *testing.T) {
	data := "\xef\xbb\xbfDate,Shift,Operator,Workstation,Part #,SO#,Good Pieces,Scrap,Uptime,Downtime\n" +
		"01/14/2026,1.0,Ann,M-1,P-100,SO-7,100,5,420,60\n" +
		"2026-01-13,2,Bob,M-2,P-200,,\"1,200\",0,400,20\n"

	entries, err := Parse("shift.csv", strings.NewReader(data), today)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, storage.ReportEntry{
		Date: "2026-01-14", Shift: "1", Operator: "Ann", Machine: "M-1", PartNumber: "P-100", Job: "SO-7",
		GoodCount: 100, RejectCount: 5, TotalCount: 105,
		RunTimeMin: 420, DowntimeMin: 60, PlannedProductionTimeMin: 480,
	}, entries[0])
	assert.Equal(t, 1200, entries[1].GoodCount)
	assert.Equal(t, "", entries[1].Job)
}

func TestParse_Defaults(t *testing.T) {
	data := "part number,good,uptime\nP-1,10,300\n,,\nnan,4,200\n"

	entries, err := Parse("x.CSV", strings.NewReader(data), today)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.Equal(t, "2026-01-15", e.Date)
	assert.Equal(t, "Unknown", e.Operator)
	assert.Equal(t, "Unknown", e.Machine)
	assert.Equal(t, "Unknown", e.Shift)
	assert.Equal(t, 0, e.RejectCount)
	assert.Equal(t, 10, e.TotalCount)
	assert.Equal(t, 300.0, e.PlannedProductionTimeMin)

	assert.Equal(t, "Unknown", entries[1].PartNumber)
}

func TestParse_HoursAreConvertedToMinutes(t *testing.T) {
	data := "part_number,good_count,run_time_min,downtime_min\nP-1,10,7.5,0.5\nP-2,10,8,1\n"

	entries, err := Parse("hours.csv", strings.NewReader(data), today)
	require.NoError(t, err)

	assert.Equal(t, 450.0, entries[0].RunTimeMin)
	assert.Equal(t, 30.0, entries[0].DowntimeMin)
	assert.Equal(t, 480.0, entries[0].PlannedProductionTimeMin)
	assert.Equal(t, 540.0, entries[1].PlannedProductionTimeMin)
}

func TestParse_UnparsableNumbersAreZero(t *testing.T) {
	data := "part_number,good_count,run_time_min\nP-1,abc,480\n"

	entries, err := Parse("x.csv", strings.NewReader(data), today)
	require.NoError(t, err)
	assert.Equal(t, 0, entries[0].GoodCount)
}

func TestParse_MissingColumns(t *testing.T) {
	data := "Operator,Part #\nAnn,P-1\n"

	_, err := Parse("x.csv", strings.NewReader(data), today)

	var mcErr *MissingColumnsError
	require.True(t, errors.As(err, &mcErr))
	assert.Equal(t, []string{"operator", "part_number"}, mcErr.Found)
	assert.Equal(t, []string{"run_time_min", "good_count"}, mcErr.Missing)
	assert.Contains(t, err.Error(), "Columns Missing")
}

func TestParse_InvalidDate(t *testing.T) {
	data := "date,part_number,good_count,run_time_min\nsoon,P-1,1,400\n"

	_, err := Parse("x.csv", strings.NewReader(data), today)

	var dErr *InvalidDateError
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, "soon", dErr.Value)
	assert.Equal(t, 2, dErr.Row)
}

func TestParse_NegativeValuesRejected(t *testing.T) {
	data := "part_number,good_count,run_time_min\nP-1,-3,400\n"

	_, err := Parse("x.csv", strings.NewReader(data), today)
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}

func TestParse_ErrorNamesSpreadsheetRow(t *testing.T) {
	data := "part_number,good_count,run_time_min\nP-1,3,400\n,,\n , ,\nP-2,-3,400\n"

	_, err := Parse("x.csv", strings.NewReader(data), today)

	require.ErrorIs(t, err, storage.ErrInvalidRecord)
	assert.Contains(t, err.Error(), "row 5: ")
}

func TestParse_Windows1252(t *testing.T) {
	// "Jos\xe9" is "José" in cp1252.
	data := "operator,part_number,good_count,run_time_min\nJos\xe9,P-1,1,400\n"

	entries, err := Parse("x.csv", strings.NewReader(data), today)
	require.NoError(t, err)
	assert.Equal(t, "José", entries[0].Operator)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Part #", "Operator", "Good", "Scrap", "Run Time"},
		{"P-9", "Cy", 50, 2, 460},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	entries, err := Parse("report.xlsx", &buf, today)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "P-9", entries[0].PartNumber)
	assert.Equal(t, 52, entries[0].TotalCount)
	assert.Equal(t, 460.0, entries[0].RunTimeMin)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("notes.txt", strings.NewReader("a"), today)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse("x.csv", strings.NewReader(""), today)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
