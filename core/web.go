package core

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

var templateFuncs = template.FuncMap{
	"grade": formatGrade,
	"name":  displayName,
}

// parseTemplates loads every page template into one set keyed by file name.
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(webFS, "web/templates/*.html")
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return http.FS(sub)
}

func formatGrade(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", *v)
}
