package printout

import (
	"fmt"
	"html/template"
	"io"
)

const pageStyle = `
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: Arial, sans-serif; background: #fff; color: #1f1f1f; padding: 40px; }
header { text-align: center; margin-bottom: 40px; border-bottom: 4px solid #003366; padding-bottom: 20px; }
header h1 { color: #003366; font-size: 42px; text-transform: uppercase; letter-spacing: 2px; }
header h3 { color: #666; margin-top: 10px; font-size: 24px; }
header p { color: #999; font-size: 18px; }
.podium { display: flex; justify-content: center; align-items: flex-end; gap: 40px; margin-bottom: 50px; }
.place { text-align: center; width: 200px; }
.place .name { font-size: 24px; font-weight: bold; margin-bottom: 10px; }
.place .block { display: flex; align-items: center; justify-content: center; border-radius: 8px 8px 0 0; color: #fff; font-size: 48px; font-weight: bold; }
.place .value { margin-top: 10px; font-size: 20px; font-weight: bold; color: #555; }
.place-1 { width: 240px; }
.place-1 .name, .place-1 .value { color: #003366; font-size: 28px; }
.place-1 .block { height: 180px; font-size: 64px; }
.place-2 .block { height: 140px; }
.place-3 .block { height: 120px; }
table { width: 100%; border-collapse: collapse; font-size: 18px; }
thead tr { background: #f0f0f0; border-bottom: 2px solid #ddd; }
th, td { padding: 12px; text-align: left; }
td.num, th.num { text-align: right; }
tbody tr { border-bottom: 1px solid #eee; }
td.good { color: #3f8600; }
footer { margin-top: 40px; text-align: center; color: #999; font-size: 14px; border-top: 1px solid #eee; padding-top: 20px; }
.regions { display: grid; gap: 24px; }
.region h2 { font-size: 20px; margin-bottom: 12px; color: #003366; }
.region-failed { border: 1px dashed #ff4d4f; padding: 16px; color: #ff4d4f; }
.gauges { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; text-align: center; }
.gauge-title { color: #8c8c8c; font-size: 14px; }
.gauge-value { font-size: 26px; font-weight: bold; }
.gauge-target { color: #8c8c8c; font-size: 12px; }
@media print { body { padding: 0; } }
`

const leaderboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{style}}</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <h3>{{.Subtitle}}</h3>
  <p>Period: {{.Period}}</p>
</header>
<section class="podium">
{{- range .PodiumOrder}}
  <div class="place place-{{.Place}}">
    <div class="name">{{.Name}}</div>
    <div class="block" style="background-color: {{.Color}}">{{.Place}}</div>
    <div class="value">{{.Value}}</div>
  </div>
{{- end}}
</section>
{{- if .Rows}}
<table>
  <thead>
    <tr><th>Rank</th><th>Operator</th><th class="num">Volume</th><th class="num">Good Parts</th><th class="num">{{.ValueHeader}}</th></tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr><td>#{{.Rank}}</td><td>{{.Name}}</td><td class="num">{{.Volume}}</td><td class="num good">{{.Good}}</td><td class="num">{{.Value}}</td></tr>
{{- end}}
  </tbody>
</table>
{{- end}}
<footer>Performance Analytics &bull; Values based on machine data</footer>
</body>
</html>
`

var funcs = template.FuncMap{
	"style": func() template.CSS { return template.CSS(pageStyle) },
}

var leaderboardTmpl = template.Must(template.New("leaderboard").Funcs(funcs).Parse(leaderboardTemplate))

// WriteHTML renders the print poster of doc.
func WriteHTML(w io.Writer, doc Document) error {
	if err := leaderboardTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("printout.WriteHTML: %w", err)
	}
	return nil
}
