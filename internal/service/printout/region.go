package printout

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

// Region is one independently rendered section of a printed page.
type Region struct {
	Name   string
	Render func(w io.Writer) error
}

// HTML renders the region. A failing or panicking region is replaced by a
// static error panel and the cause is returned alongside it.
func (r Region) HTML() (out template.HTML, err error) {
	var buf bytes.Buffer

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("region %q panicked: %v", r.Name, rec)
		}
		if err != nil {
			out = failedPanel(r.Name)
		}
	}()

	if r.Render == nil {
		return "", fmt.Errorf("region %q has no renderer", r.Name)
	}
	if err := r.Render(&buf); err != nil {
		return "", fmt.Errorf("region %q: %w", r.Name, err)
	}

	return template.HTML(buf.String()), nil
}

var failedTmpl = template.Must(template.New("failed").Parse(
	`<section class="region region-failed"><h2>{{.}}</h2><p>This section could not be displayed.</p><p><a href="">Reload page</a></p></section>`))

func failedPanel(name string) template.HTML {
	var buf bytes.Buffer
	if err := failedTmpl.Execute(&buf, name); err != nil {
		return template.HTML(`<section class="region region-failed"><p>This section could not be displayed.</p></section>`)
	}
	return template.HTML(buf.String())
}

// Page is a printable page assembled from independent regions.
type Page struct {
	Title    string
	Subtitle string
	Regions  []Region
	// OnFault is called once per region that failed to render.
	OnFault func(region string, err error)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{style}}</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  {{- if .Subtitle}}
  <p>{{.Subtitle}}</p>
  {{- end}}
</header>
<main class="regions">
{{- range .Sections}}
{{.}}
{{- end}}
</main>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))

// Write renders every region and the surrounding page. Only a failure to write
// the page itself is returned.
func (p Page) Write(w io.Writer) error {
	sections := make([]template.HTML, 0, len(p.Regions))
	for _, r := range p.Regions {
		html, err := r.HTML()
		if err != nil && p.OnFault != nil {
			p.OnFault(r.Name, err)
		}
		sections = append(sections, html)
	}

	err := pageTmpl.Execute(w, struct {
		Title    string
		Subtitle string
		Sections []template.HTML
	}{Title: p.Title, Subtitle: p.Subtitle, Sections: sections})
	if err != nil {
		return fmt.Errorf("printout.Page.Write: %w", err)
	}

	return nil
}
