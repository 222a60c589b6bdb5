package table

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func WriteHTML(w io.Writer, t *Table) error {
	return templates.ExecuteTemplate(w, "usage_table", t)
}
