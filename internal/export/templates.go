package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var boardTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
	}
	boardTemplate = template.Must(template.New("board").Funcs(funcMap).Parse(boardTemplateHTML))
}

// RenderBoardHTML renders the board template with provided data
func RenderBoardHTML(data BoardData) (string, error) {
	var buf bytes.Buffer
	if err := boardTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const boardTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .list { margin: 1.5rem 0; }
    .list h2 { background: #f0f0f0; padding: 0.4rem 0.8rem; border-radius: 4px; font-size: 1.1em; }
    .card { border: 1px solid #ddd; border-radius: 4px; padding: 0.6rem 0.9rem; margin: 0.5rem 0; page-break-inside: avoid; }
    .card h3 { margin: 0 0 0.3rem 0; font-size: 1em; }
    .card .done { color: #2a7a2a; font-weight: bold; }
    .card .due { color: #a05a00; font-size: 0.85em; }
    .labels { margin-top: 0.3rem; }
    .label { display: inline-block; background: #e4e9f0; border-radius: 3px; padding: 0 0.4rem; margin-right: 0.3rem; font-size: 0.8em; }
    .empty { color: #999; font-style: italic; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <div class="meta">{{.OwnerName}} | {{.UpdatedAt.Format "Jan 2, 2006"}}</div>
  {{range .Lists}}
  <div class="list">
    <h2>{{.Title}}</h2>
    {{if .Cards}}
      {{range .Cards}}
      <div class="card">
        <h3>{{.Title}}{{if .IsCompleted}} <span class="done">&#10003;</span>{{end}}</h3>
        {{if .Description}}<p>{{.Description}}</p>{{end}}
        {{if .DueDate}}<div class="due">Due {{.DueDate.Format "Jan 2, 2006"}}</div>{{end}}
        {{if .Labels}}<div class="labels">{{range .Labels}}<span class="label">{{.}}</span>{{end}}</div>{{end}}
      </div>
      {{end}}
    {{else}}
      <p class="empty">No cards</p>
    {{end}}
  </div>
  {{end}}
</body>
</html>`
