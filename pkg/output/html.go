package output

import (
	"bytes"
	"context"
	"html/template"
	"io"

	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/literal"
)

const nodeHTML = `{{define "node" -}}
{{if eq .Kind "sequence"}}<ol class="seq">{{range .Items}}<li>{{template "node" .}}</li>{{else}}<li class="muted">[]</li>{{end}}</ol>
{{- else if eq .Kind "mapping"}}<dl class="map">{{range .Fields}}<dt>{{.Key}}</dt><dd>{{template "node" .Node}}</dd>{{else}}<dt class="muted">{}</dt>{{end}}</dl>
{{- else if eq .Kind "record"}}<div class="record"><span class="type">{{.Type}}</span>
{{- if .Items}}<ol class="args">{{range .Items}}<li>{{template "node" .}}</li>{{end}}</ol>{{end}}
{{- if .Fields}}<dl class="map">{{range .Fields}}<dt>{{.Key}}</dt><dd>{{template "node" .Node}}</dd>{{end}}</dl>{{end}}</div>
{{- else}}<span class="{{.Kind}}">{{.Text}}</span>{{end}}
{{- end}}`

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: ui-monospace, monospace; margin: 1.5rem; }
.status { color: #555; }
table { border-collapse: collapse; width: 100%; }
td { vertical-align: top; padding: 2px 8px; border-bottom: 1px solid #eee; }
td.n { color: #999; text-align: right; }
.count { color: #a60; }
.muted, .placeholder { color: #999; }
.string { color: #080; }
.number { color: #a50; }
.bool, .null { color: #a0a; }
.type { font-weight: bold; color: #069; }
ol, dl { margin: 0; padding-left: 1.2rem; }
dt { float: left; clear: left; margin-right: 0.5rem; color: #036; }
dt::after { content: ":"; }
dd { margin: 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Documents}}
<section>
<p class="status">{{.Status}}</p>
<table>
{{range .Lines}}<tr class="{{.Kind}}"><td class="n">{{.Number}}</td><td>{{.Body}}{{if gt .Count 1}} <span class="count">×{{.Count}}</span>{{end}}</td></tr>
{{end}}</table>
</section>
{{end}}
</body>
</html>
`

var (
	nodeTemplate = template.Must(template.New("tree").Parse(nodeHTML))
	pageTemplate = template.Must(template.New("page").Parse(pageHTML))
)

// HTMLFormatter renders reports as a standalone HTML page.
type HTMLFormatter struct {
	opts FormatOptions
}

// NewHTMLFormatter creates a new HTML formatter with the given options.
func NewHTMLFormatter(opts FormatOptions) *HTMLFormatter {
	return &HTMLFormatter{opts: opts}
}

// Name returns the format name.
func (f *HTMLFormatter) Name() string {
	return "html"
}

type htmlPage struct {
	Title     string
	Documents []htmlDocument
}

type htmlDocument struct {
	Status string
	Lines  []htmlLine
}

type htmlLine struct {
	Number int
	Kind   string
	Count  int
	Body   template.HTML
}

type htmlNode struct {
	Kind   string
	Text   string
	Type   string
	Items  []htmlNode
	Fields []htmlField
}

type htmlField struct {
	Key  string
	Node htmlNode
}

// Format renders the report as HTML.
func (f *HTMLFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	page := htmlPage{Title: f.opts.Title}
	if page.Title == "" {
		page.Title = "loglens"
	}

	for _, doc := range report.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := htmlDocument{Status: doc.Status, Lines: make([]htmlLine, len(doc.Lines))}
		for i, line := range doc.Lines {
			d.Lines[i] = htmlLine{
				Number: i + 1,
				Kind:   line.Kind.String(),
				Count:  line.Count,
				Body:   renderLine(line),
			}
		}
		page.Documents = append(page.Documents, d)
	}

	return pageTemplate.Execute(w, page)
}

// renderLine renders one line's body. If the value tree fails to render, the
// escaped original text is shown instead.
func renderLine(line classify.Line) template.HTML {
	switch line.Kind {
	case classify.KindEmpty:
		return `<span class="placeholder">(empty)</span>`
	case classify.KindRaw:
		return rawHTML(line.Text)
	}

	var buf bytes.Buffer
	if err := nodeTemplate.ExecuteTemplate(&buf, "node", toNode(line.Value)); err != nil {
		return rawHTML(line.Original)
	}
	return template.HTML(buf.String()) // #nosec G203 -- produced by html/template
}

func rawHTML(text string) template.HTML {
	return template.HTML(`<span class="raw">` + template.HTMLEscapeString(text) + `</span>`) // #nosec G203 -- escaped
}

func toNode(v literal.Value) htmlNode {
	n := htmlNode{Kind: v.Kind().String()}
	switch v.Kind() {
	case literal.KindNull:
		n.Text = "null"
	case literal.KindSequence:
		for _, item := range v.Items() {
			n.Items = append(n.Items, toNode(item))
		}
	case literal.KindMapping:
		n.Fields = toFields(v.Mapping())
	case literal.KindRecord:
		r := v.Record()
		n.Type = r.Type
		for _, item := range r.Positional {
			n.Items = append(n.Items, toNode(item))
		}
		n.Fields = toFields(r.Fields)
	default:
		n.Text = v.Text()
	}
	return n
}

func toFields(m *literal.Mapping) []htmlField {
	var fields []htmlField
	for _, e := range m.Entries() {
		fields = append(fields, htmlField{Key: e.Key, Node: toNode(e.Value)})
	}
	return fields
}
