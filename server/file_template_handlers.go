package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"time"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"score":  formatScore,
	"grade":  formatGrade,
	"date":   formatDate,
	"plural": plural,
}

// ParseTemplate parses the named files from the embedded filesystem into one
// template set. The first name is the set's name.
func ParseTemplate(names ...string) (*template.Template, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no template named")
	}
	return template.New(names[0]).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), names...)
}

func formatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*score, 'f', 1, 64) + "%"
}

func formatGrade(average float64) string {
	return strconv.FormatFloat(average, 'f', 1, 64) + "%"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "No due date"
	}
	return t.Local().Format("Mon 2 Jan 2006, 15:04")
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}
