package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"oee-board/internal/storage"
)

type Field string

const (
	FieldShift       Field = "shift"
	FieldOperator    Field = "operator"
	FieldMachine     Field = "machine"
	FieldPartNumber  Field = "part_number"
	FieldJob         Field = "job"
	FieldGoodCount   Field = "good_count"
	FieldRejectCount Field = "reject_count"
	FieldRunTime     Field = "run_time_min"
	FieldDowntime    Field = "downtime_min"
)

// Fields lists the editable columns in display order.
var Fields = []Field{
	FieldShift, FieldOperator, FieldMachine, FieldPartNumber, FieldJob,
	FieldGoodCount, FieldRejectCount, FieldRunTime, FieldDowntime,
}

var titles = map[Field]string{
	FieldShift:       "Shift",
	FieldOperator:    "Operator",
	FieldMachine:     "Machine",
	FieldPartNumber:  "Part Number",
	FieldJob:         "Job",
	FieldGoodCount:   "Good Count",
	FieldRejectCount: "Reject Count",
	FieldRunTime:     "Run Time (min)",
	FieldDowntime:    "Downtime (min)",
}

var ErrUnknownField = errors.New("unknown field")

func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := titles[f]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownField, s)
	}
	return f, nil
}

func (f Field) Title() string {
	return titles[f]
}

// Form is the edit buffer of the row being edited. Values are kept as typed by the user.
type Form map[Field]string

func formFromEntry(e storage.ReportEntry) Form {
	return Form{
		FieldShift:       e.Shift,
		FieldOperator:    e.Operator,
		FieldMachine:     e.Machine,
		FieldPartNumber:  e.PartNumber,
		FieldJob:         e.Job,
		FieldGoodCount:   strconv.Itoa(e.GoodCount),
		FieldRejectCount: strconv.Itoa(e.RejectCount),
		FieldRunTime:     strconv.FormatFloat(e.RunTimeMin, 'f', -1, 64),
		FieldDowntime:    strconv.FormatFloat(e.DowntimeMin, 'f', -1, 64),
	}
}

func (f Form) clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[Field(k)]
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// Validate parses the buffer into a full update. Every field is required.
func (f Form) Validate() (storage.EntryUpdate, error) {
	var (
		u    storage.EntryUpdate
		errs = map[Field]string{}
	)

	text := func(field Field) *string {
		v := strings.TrimSpace(f[field])
		if v == "" {
			errs[field] = fmt.Sprintf("Please Input %s!", field.Title())
			return nil
		}
		return &v
	}
	count := func(field Field) *int {
		v := strings.TrimSpace(f[field])
		if v == "" {
			errs[field] = fmt.Sprintf("Please Input %s!", field.Title())
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs[field] = fmt.Sprintf("%s must be a whole number of at least 0", field.Title())
			return nil
		}
		return &n
	}
	minutes := func(field Field) *float64 {
		v := strings.TrimSpace(f[field])
		if v == "" {
			errs[field] = fmt.Sprintf("Please Input %s!", field.Title())
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			errs[field] = fmt.Sprintf("%s must be a number of at least 0", field.Title())
			return nil
		}
		return &n
	}

	u.Shift = text(FieldShift)
	u.Operator = text(FieldOperator)
	u.Machine = text(FieldMachine)
	u.PartNumber = text(FieldPartNumber)
	u.Job = text(FieldJob)
	u.GoodCount = count(FieldGoodCount)
	u.RejectCount = count(FieldRejectCount)
	u.RunTimeMin = minutes(FieldRunTime)
	u.DowntimeMin = minutes(FieldDowntime)

	if len(errs) > 0 {
		return storage.EntryUpdate{}, &ValidationError{Fields: errs}
	}

	return u, nil
}
