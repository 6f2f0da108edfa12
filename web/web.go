// Package web holds the embedded HTML templates for the landing and result
// pages.
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var files embed.FS

// Templates is the parsed set; pages are rendered by name ("index", "result").
var Templates = template.Must(template.ParseFS(files, "templates/*.html"))

// Render executes the named page into w.
func Render(w io.Writer, name string, data interface{}) error {
	return Templates.ExecuteTemplate(w, name, data)
}
