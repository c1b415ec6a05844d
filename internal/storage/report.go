package storage

import (
	"fmt"
	"time"
)

type Report struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy int64     `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ReportEntry is one production row of a report.
type ReportEntry struct {
	ID                       int64   `json:"id"`
	ReportID                 int64   `json:"report_id"`
	Date                     string  `json:"date"`
	Shift                    string  `json:"shift"`
	Operator                 string  `json:"operator"`
	Machine                  string  `json:"machine"`
	PartNumber               string  `json:"part_number"`
	Job                      string  `json:"job"`
	GoodCount                int     `json:"good_count"`
	RejectCount              int     `json:"reject_count"`
	TotalCount               int     `json:"total_count"`
	RunTimeMin               float64 `json:"run_time_min"`
	DowntimeMin              float64 `json:"downtime_min"`
	PlannedProductionTimeMin float64 `json:"planned_production_time_min"`
}

// Validate rejects negative counts and times.
func (e ReportEntry) Validate() error {
	switch {
	case e.GoodCount < 0:
		return fmt.Errorf("%w: good_count %d is negative", ErrInvalidRecord, e.GoodCount)
	case e.RejectCount < 0:
		return fmt.Errorf("%w: reject_count %d is negative", ErrInvalidRecord, e.RejectCount)
	case e.RunTimeMin < 0:
		return fmt.Errorf("%w: run_time_min %.2f is negative", ErrInvalidRecord, e.RunTimeMin)
	case e.DowntimeMin < 0:
		return fmt.Errorf("%w: downtime_min %.2f is negative", ErrInvalidRecord, e.DowntimeMin)
	}
	return nil
}

// Recalculate derives total_count and planned_production_time_min.
func (e *ReportEntry) Recalculate() {
	e.TotalCount = e.GoodCount + e.RejectCount
	e.PlannedProductionTimeMin = e.RunTimeMin + e.DowntimeMin
}

// EntryUpdate is a partial entry; nil fields are left untouched.
type EntryUpdate struct {
	Operator    *string  `json:"operator,omitempty"`
	Machine     *string  `json:"machine,omitempty"`
	PartNumber  *string  `json:"part_number,omitempty"`
	Job         *string  `json:"job,omitempty"`
	Shift       *string  `json:"shift,omitempty"`
	GoodCount   *int     `json:"good_count,omitempty"`
	RejectCount *int     `json:"reject_count,omitempty"`
	RunTimeMin  *float64 `json:"run_time_min,omitempty"`
	DowntimeMin *float64 `json:"downtime_min,omitempty"`
}

// Apply copies the set fields of u onto e and recomputes the derived totals.
func (u EntryUpdate) Apply(e *ReportEntry) {
	if u.Operator != nil {
		e.Operator = *u.Operator
	}
	if u.Machine != nil {
		e.Machine = *u.Machine
	}
	if u.PartNumber != nil {
		e.PartNumber = *u.PartNumber
	}
	if u.Job != nil {
		e.Job = *u.Job
	}
	if u.Shift != nil {
		e.Shift = *u.Shift
	}
	if u.GoodCount != nil {
		e.GoodCount = *u.GoodCount
	}
	if u.RejectCount != nil {
		e.RejectCount = *u.RejectCount
	}
	if u.RunTimeMin != nil {
		e.RunTimeMin = *u.RunTimeMin
	}
	if u.DowntimeMin != nil {
		e.DowntimeMin = *u.DowntimeMin
	}
	e.Recalculate()
}

// NewManualEntry builds a manually added entry, filling blanks with placeholders.
func NewManualEntry(reportID int64, u EntryUpdate, today time.Time) ReportEntry {
	e := ReportEntry{
		ReportID:   reportID,
		Date:       today.Format(time.DateOnly),
		Operator:   "New Operator",
		Machine:    "New Machine",
		PartNumber: "Part-001",
		Shift:      "1",
	}
	nonEmpty := func(s *string) *string {
		if s == nil || *s == "" {
			return nil
		}
		return s
	}
	u.Operator = nonEmpty(u.Operator)
	u.Machine = nonEmpty(u.Machine)
	u.PartNumber = nonEmpty(u.PartNumber)
	u.Shift = nonEmpty(u.Shift)
	u.Apply(&e)
	return e
}

type ReportUpdate struct {
	Filename *string `json:"filename"`
}
