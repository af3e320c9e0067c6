// Package prompt renders the instructions sent to the model for each flow.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	ImageDescription = "image_description.tmpl"
	CbcReport        = "cbc_report.tmpl"
	InterviewTurn    = "interview_turn.tmpl"
	Recommendations  = "recommendations.tmpl"
	ChatAnswer       = "chat_answer.tmpl"
	ClinicLookup     = "clinic_lookup.tmpl"
)

//go:embed templates/*.tmpl
var files embed.FS

var templates = template.Must(
	template.New("prompts").
		Option("missingkey=error").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(files, "templates/*.tmpl"),
)

// Render executes the named template with data.
func Render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
