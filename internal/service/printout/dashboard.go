package printout

import (
	"fmt"
	"html/template"
	"io"

	"oee-board/internal/service/format"
	"oee-board/internal/service/gauge"
	"oee-board/internal/storage"
)

const DashboardTitle = "OEE Dashboard"

var (
	gaugesTmpl = template.Must(template.New("gauges").Parse(`<section class="region"><h2>Key Indicators</h2><div class="gauges">
{{- range .}}<div>{{.}}</div>{{end -}}
</div></section>`))

	insightsTmpl = template.Must(template.New("insights").Parse(`<section class="region"><h2>Insights</h2>
{{- if .}}<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No insights for this report.</p>{{end -}}
</section>`))

	trendTmpl = template.Must(template.New("trend").Parse(`<section class="region"><h2>Trend</h2>
<table><thead><tr><th>Report</th><th class="num">OEE</th><th class="num">Availability</th><th class="num">Performance</th><th class="num">Quality</th></tr></thead><tbody>
{{- range .}}<tr><td>{{.Label}}</td><td class="num">{{.OEE}}</td><td class="num">{{.Availability}}</td><td class="num">{{.Performance}}</td><td class="num">{{.Quality}}</td></tr>{{end -}}
</tbody></table></section>`))

	activityTmpl = template.Must(template.New("activity").Parse(`<section class="region"><h2>Recent Activity</h2>
<table><thead><tr><th>Date</th><th>Operator</th><th>Machine</th><th>Part</th><th class="num">OEE</th></tr></thead><tbody>
{{- range .}}<tr><td>{{.Date}}</td><td>{{.Operator}}</td><td>{{.Machine}}</td><td>{{.Part}}</td><td class="num" style="color: {{.Color}}">{{.OEE}}</td></tr>{{end -}}
</tbody></table></section>`))
)

type trendRow struct {
	Label        string
	OEE          string
	Availability string
	Performance  string
	Quality      string
}

type activityRow struct {
	Date, Operator, Machine, Part, OEE, Color string
}

// GaugesRegion draws one dial per gauge reading of the snapshot.
func GaugesRegion(readings []storage.GaugeReading) Region {
	return Region{Name: "Key Indicators", Render: func(w io.Writer) error {
		dials := make([]template.HTML, 0, len(readings))
		for _, r := range readings {
			target := r.Target
			svg, err := gauge.New(r.Value, &target).SVG(r.Title)
			if err != nil {
				return err
			}
			dials = append(dials, svg)
		}
		return gaugesTmpl.Execute(w, dials)
	}}
}

func InsightsRegion(insights []string) Region {
	return Region{Name: "Insights", Render: func(w io.Writer) error {
		return insightsTmpl.Execute(w, insights)
	}}
}

// TrendRegion tabulates the sparkline series. All series must be as long as the labels.
func TrendRegion(s storage.Sparkline) Region {
	return Region{Name: "Trend", Render: func(w io.Writer) error {
		n := len(s.Labels)
		if len(s.OEE) != n || len(s.Availability) != n || len(s.Performance) != n || len(s.Quality) != n {
			return fmt.Errorf("sparkline series lengths differ from %d labels", n)
		}

		rows := make([]trendRow, n)
		for i := range s.Labels {
			rows[i] = trendRow{
				Label:        s.Labels[i],
				OEE:          format.Percent(s.OEE[i], 1),
				Availability: format.Percent(s.Availability[i], 1),
				Performance:  format.Percent(s.Performance[i], 1),
				Quality:      format.Percent(s.Quality[i], 1),
			}
		}
		return trendTmpl.Execute(w, rows)
	}}
}

func ActivityRegion(rows []storage.MetricRow) Region {
	return Region{Name: "Recent Activity", Render: func(w io.Writer) error {
		out := make([]activityRow, len(rows))
		for i, m := range rows {
			out[i] = activityRow{
				Date:     m.Date,
				Operator: m.Operator,
				Machine:  m.Machine,
				Part:     m.PartNumber,
				OEE:      format.Percent(m.OEE, 1),
				Color:    format.OEEColor(m.OEE),
			}
		}
		return activityTmpl.Execute(w, out)
	}}
}

// DashboardPage assembles the printable dashboard. Each section is its own
// region so one malformed block does not blank the page.
func DashboardPage(stats storage.DashboardStats, onFault func(string, error)) Page {
	subtitle := "No reports uploaded yet"
	if stats.ReportDate != "" {
		subtitle = fmt.Sprintf("Report #%d, %s", stats.ReportID, stats.ReportDate)
	}

	return Page{
		Title:    DashboardTitle,
		Subtitle: subtitle,
		Regions: []Region{
			GaugesRegion(stats.Gauges),
			InsightsRegion(stats.Insights),
			TrendRegion(stats.Sparkline),
			ActivityRegion(stats.RecentActivity),
		},
		OnFault: onFault,
	}
}
