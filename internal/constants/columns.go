package constants

const (
	ColDate        = "date"
	ColShift       = "shift"
	ColOperator    = "operator"
	ColMachine     = "machine"
	ColPartNumber  = "part_number"
	ColJob         = "job"
	ColGoodCount   = "good_count"
	ColRejectCount = "reject_count"
	ColRunTime     = "run_time_min"
	ColDowntime    = "downtime_min"
)

var (
	// UploadColumns maps a normalised header cell (trimmed, lower case) to the entry field it fills.
	UploadColumns = map[string]string{
		"part #s":     ColPartNumber,
		"part #":      ColPartNumber,
		"partnumber":  ColPartNumber,
		"part_number": ColPartNumber,
		"part number": ColPartNumber,

		"operator": ColOperator,

		"position":    ColMachine,
		"machine":     ColMachine,
		"workstation": ColMachine,

		"so#s": ColJob,
		"so#":  ColJob,
		"job":  ColJob,

		"good pieces": ColGoodCount,
		"good":        ColGoodCount,
		"goodcount":   ColGoodCount,
		"good pcs":    ColGoodCount,
		"good_pcs":    ColGoodCount,
		"good_count":  ColGoodCount,

		"scrap":        ColRejectCount,
		"reject":       ColRejectCount,
		"rejectcount":  ColRejectCount,
		"rejects":      ColRejectCount,
		"scrap pcs":    ColRejectCount,
		"reject_count": ColRejectCount,

		"uptime":       ColRunTime,
		"runtime":      ColRunTime,
		"run time":     ColRunTime,
		"run_time_min": ColRunTime,

		"downtime":     ColDowntime,
		"downtime_min": ColDowntime,

		"date":  ColDate,
		"shift": ColShift,
	}

	// RequiredUploadColumns must be present after mapping.
	RequiredUploadColumns = []string{ColPartNumber, ColRunTime, ColGoodCount}

	// BlankCells are read as missing values.
	BlankCells = map[string]bool{
		"":    true,
		"nan": true,
		"NaN": true,
		"NaT": true,
	}
)
