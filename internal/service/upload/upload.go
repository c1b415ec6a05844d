// Package upload reads production extracts (CSV or XLSX) into report entries.
package upload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"oee-board/internal/constants"
	"oee-board/internal/storage"
)

// HoursThreshold is the mean run time under which time columns are read as hours.
const HoursThreshold = 12.0

var (
	ErrUnsupportedFile = errors.New("file is not a valid CSV or Excel file")
	ErrEmptyFile       = errors.New("file has no header row")
)

// MissingColumnsError lists the mapped columns found and the required ones absent.
type MissingColumnsError struct {
	Found   []string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Columns Missing. Found: [%s]. Missing: [%s]",
		strings.Join(e.Found, ", "), strings.Join(e.Missing, ", "))
}

// InvalidDateError reports a date cell that could not be read.
type InvalidDateError struct {
	Row   int
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("Invalid date format: %s (row %d)", e.Value, e.Row)
}

// Parse reads the extract named filename. Entries without a date get today's.
func Parse(filename string, r io.Reader, today time.Time) ([]storage.ReportEntry, error) {
	const op = "service.upload.Parse"

	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm", ".xls":
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%s: %q: %w", op, filename, ErrUnsupportedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := Entries(rows, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, err = charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode cp1252: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

// MapHeader returns the entry field of every header cell, "" for unknown columns.
func MapHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = constants.UploadColumns[strings.ToLower(strings.TrimSpace(h))]
	}
	return out
}

func isBlank(v string) bool {
	return constants.BlankCells[strings.TrimSpace(v)]
}

func number(v string) float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if isBlank(v) {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func label(v string) string {
	if isBlank(v) {
		return "Unknown"
	}
	return strings.TrimSpace(v)
}

func text(v string) string {
	if isBlank(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// shift renders "1.0" as "1".
func shift(v string) string {
	v = text(v)
	if v == "" {
		return "Unknown"
	}
	return strings.TrimSuffix(v, ".0")
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"01-02-06",
	"1/2/06",
	"2006/01/02",
}

// ParseDate accepts the date shapes spreadsheets commonly export.
func ParseDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

// Entries maps rows (header first) to report entries.
func Entries(rows [][]string, today time.Time) ([]storage.ReportEntry, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	fields := MapHeader(rows[0])
	index := map[string]int{}
	for i, f := range fields {
		if f == "" {
			continue
		}
		if _, dup := index[f]; !dup {
			index[f] = i
		}
	}

	var missing []string
	for _, req := range constants.RequiredUploadColumns {
		if _, ok := index[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		found := make([]string, 0, len(index))
		for f := range index {
			found = append(found, f)
		}
		slices.Sort(found)
		return nil, &MissingColumnsError{Found: found, Missing: missing}
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	defaultDate := today.Format(time.DateOnly)
	entries := make([]storage.ReportEntry, 0, len(rows)-1)
	lines := make([]int, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if slices.IndexFunc(row, func(v string) bool { return !isBlank(v) }) < 0 {
			continue
		}

		e := storage.ReportEntry{
			Date:        defaultDate,
			Shift:       shift(cell(row, constants.ColShift)),
			Operator:    label(cell(row, constants.ColOperator)),
			Machine:     label(cell(row, constants.ColMachine)),
			PartNumber:  label(cell(row, constants.ColPartNumber)),
			Job:         text(cell(row, constants.ColJob)),
			GoodCount:   int(math.Round(number(cell(row, constants.ColGoodCount)))),
			RejectCount: int(math.Round(number(cell(row, constants.ColRejectCount)))),
			RunTimeMin:  number(cell(row, constants.ColRunTime)),
			DowntimeMin: number(cell(row, constants.ColDowntime)),
		}

		if raw := cell(row, constants.ColDate); !isBlank(raw) {
			d, ok := ParseDate(raw)
			if !ok {
				return nil, &InvalidDateError{Row: n + 2, Value: raw}
			}
			e.Date = d
		}

		entries = append(entries, e)
		lines = append(lines, n+2)
	}

	if len(entries) > 0 {
		var sum float64
		for _, e := range entries {
			sum += e.RunTimeMin
		}
		hours := sum/float64(len(entries)) < HoursThreshold
		for i := range entries {
			if hours {
				entries[i].RunTimeMin *= 60
				entries[i].DowntimeMin *= 60
			}
			entries[i].Recalculate()
			if err := entries[i].Validate(); err != nil {
				return nil, fmt.Errorf("row %d: %w", lines[i], err)
			}
		}
	}

	return entries, nil
}
