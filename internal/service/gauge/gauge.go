// Package gauge maps a 0..100 reading onto a semicircular dial.
package gauge

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
)

const (
	ColorAbove   = "#52c41a"
	ColorBelow   = "#ff4d4f"
	ColorNeutral = "#1f1f1f"

	Radius  = 80.0
	CenterX = 100.0
	CenterY = 90.0
	Stroke  = 14.0
)

// TickValues are the labelled positions on the dial.
var TickValues = []float64{0, 20, 40, 60, 80, 100}

type Point struct {
	X float64
	Y float64
}

type Tick struct {
	Value float64
	Start Point
	End   Point
	Label Point
}

type Gauge struct {
	Value     float64
	Target    *float64
	Angle     float64
	Color     string
	HasTarget bool
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}

// AngleOf maps v in [0,100] to degrees in [180,360]. Out of range input is clamped.
func AngleOf(v float64) float64 {
	return 180 + clamp(v)/100*180
}

// New builds a gauge for value. target may be nil when no goal applies.
func New(value float64, target *float64) Gauge {
	v := clamp(value)
	g := Gauge{
		Value: v,
		Angle: AngleOf(v),
		Color: ColorNeutral,
	}

	if target != nil {
		t := *target
		g.Target = &t
		g.HasTarget = true
		if v >= t {
			g.Color = ColorAbove
		} else {
			g.Color = ColorBelow
		}
	}

	return g
}

// Polar returns the point at radius r and angle deg around the dial centre, in SVG coordinates.
func Polar(r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: CenterX + r*math.Cos(rad), Y: CenterY + r*math.Sin(rad)}
}

func Ticks() []Tick {
	ticks := make([]Tick, len(TickValues))
	for i, v := range TickValues {
		a := AngleOf(v)
		ticks[i] = Tick{
			Value: v,
			Start: Polar(Radius-Stroke/2+2, a),
			End:   Polar(Radius+Stroke/2-2, a),
			Label: Polar(Radius-20, a),
		}
	}
	return ticks
}

const svgTemplate = `<figure class="gauge">
<svg viewBox="0 0 200 110" width="100%" height="140" xmlns="http://www.w3.org/2000/svg">
<path d="M 20 90 A 80 80 0 0 1 180 90" fill="none" stroke="#f0f0f0" stroke-width="14"/>
{{- range .Ticks}}
<line x1="{{num .Start.X}}" y1="{{num .Start.Y}}" x2="{{num .End.X}}" y2="{{num .End.Y}}" stroke="#bfbfbf" stroke-width="2"/>
<text x="{{num .Label.X}}" y="{{num .Label.Y}}" font-size="10" fill="#bfbfbf" text-anchor="middle">{{num .Value}}%</text>
{{- end}}
<g transform="translate(100, 90) rotate({{num .Gauge.Angle}})">
<path d="M 0 -4 L 75 0 L 0 4 Z" fill="#262626"/>
<circle cx="0" cy="0" r="6" fill="#262626" stroke="#fff" stroke-width="2"/>
</g>
</svg>
<figcaption>
<div class="gauge-title">{{.Title}}</div>
<div class="gauge-value" style="color: {{.Gauge.Color}}">{{printf "%.1f" .Gauge.Value}}%</div>
{{- if .Gauge.HasTarget}}
<div class="gauge-target">Target: {{num (deref .Gauge.Target)}}%</div>
{{- end}}
</figcaption>
</figure>`

var svgTmpl = template.Must(template.New("gauge").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) },
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
}).Parse(svgTemplate))

// SVG renders the dial with needle, ticks, caption and target line.
func (g Gauge) SVG(title string) (template.HTML, error) {
	var buf bytes.Buffer
	err := svgTmpl.Execute(&buf, struct {
		Title string
		Gauge Gauge
		Ticks []Tick
	}{Title: title, Gauge: g, Ticks: Ticks()})
	if err != nil {
		return "", fmt.Errorf("gauge.SVG: %w", err)
	}

	return template.HTML(buf.String()), nil
}
