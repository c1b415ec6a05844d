package storage

// DashboardStats is the KPI snapshot behind the dashboard cards and gauges.
type DashboardStats struct {
	ReportID       int64          `json:"report_id,omitempty"`
	ReportDate     string         `json:"report_date,omitempty"`
	OEE            float64        `json:"oee"`
	Availability   float64        `json:"availability"`
	Performance    float64        `json:"performance"`
	Quality        float64        `json:"quality"`
	RecentActivity []MetricRow    `json:"recent_activity"`
	DBRowCount     int            `json:"db_row_count"`
	Sparkline      Sparkline      `json:"sparkline_data"`
	Insights       []string       `json:"insights"`
	Targets        Targets        `json:"targets"`
	Gauges         []GaugeReading `json:"gauges"`
}

type Sparkline struct {
	OEE          []float64 `json:"oee"`
	Availability []float64 `json:"availability"`
	Performance  []float64 `json:"performance"`
	Quality      []float64 `json:"quality"`
	Labels       []string  `json:"labels"`
}

// Targets are percentages (0..100).
type Targets struct {
	OEE          float64 `json:"oee"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
}

type GaugeReading struct {
	Title  string  `json:"title"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
	Angle  float64 `json:"angle"`
	Color  string  `json:"color"`
}
