package storage

import (
	"fmt"
	"time"
)

// MetricRow is one OEE result produced by the calculation engine.
type MetricRow struct {
	ID           int64   `json:"id"`
	ReportID     int64   `json:"report_id"`
	Date         string  `json:"date"`
	Operator     string  `json:"operator"`
	Machine      string  `json:"machine"`
	PartNumber   string  `json:"part_number"`
	Job          string  `json:"job"`
	Shift        string  `json:"shift"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	OEE          float64 `json:"oee"`
	GoodCount    int     `json:"good_count"`
	RejectCount  int     `json:"reject_count"`
	TargetCount  int     `json:"target_count"`
}

// OperatorRecord is one row of the compare roster. Despite the name it is
// also used for part, shift and machine groupings.
type OperatorRecord struct {
	Name          string  `json:"name"`
	TotalProduced int     `json:"total_produced"`
	TotalGood     int     `json:"total_good"`
	OEE           float64 `json:"oee"`
	Availability  float64 `json:"availability"`
	Performance   float64 `json:"performance"`
	Quality       float64 `json:"quality"`
	SampleSize    int     `json:"sample_size"`
}

func NewOperatorRecord(name string, produced, good int, oee float64) (OperatorRecord, error) {
	r := OperatorRecord{Name: name, TotalProduced: produced, TotalGood: good, OEE: oee}
	if err := r.Validate(); err != nil {
		return OperatorRecord{}, err
	}
	return r, nil
}

func (r OperatorRecord) Validate() error {
	switch {
	case r.TotalProduced < 0:
		return fmt.Errorf("%w: %q total_produced %d is negative", ErrInvalidRecord, r.Name, r.TotalProduced)
	case r.TotalGood < 0:
		return fmt.Errorf("%w: %q total_good %d is negative", ErrInvalidRecord, r.Name, r.TotalGood)
	case r.TotalGood > r.TotalProduced:
		return fmt.Errorf("%w: %q total_good %d exceeds total_produced %d", ErrInvalidRecord, r.Name, r.TotalGood, r.TotalProduced)
	case r.OEE < 0:
		return fmt.Errorf("%w: %q oee %.4f is negative", ErrInvalidRecord, r.Name, r.OEE)
	}
	return nil
}

type GroupBy string

const (
	GroupByOperator GroupBy = "operator"
	GroupByPart     GroupBy = "part"
	GroupByShift    GroupBy = "shift"
	GroupByMachine  GroupBy = "machine"
)

func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case GroupByOperator, GroupByPart, GroupByShift, GroupByMachine:
		return g, nil
	}
	return "", fmt.Errorf("unknown group_by %q", s)
}

// Column is the oee_metrics column the grouping reads.
func (g GroupBy) Column() string {
	if g == GroupByPart {
		return "part_number"
	}
	return string(g)
}

type CompareFilter struct {
	GroupBy GroupBy
	From    string
	To      string
	Limit   int
}

// Averages are plain means over the metric rows of one report.
type Averages struct {
	ReportID     int64
	UploadedAt   time.Time
	OEE          float64
	Availability float64
	Performance  float64
	Quality      float64
	Count        int
}

// ExportRow is an entry joined with its metric, if any.
type ExportRow struct {
	ReportEntry
	Metric *MetricRow
}
