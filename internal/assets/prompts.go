// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at compile time.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/classify.txt
var classifyTemplate string

// Pre-parsed so a malformed template fails at startup rather than per call.
var classifyPromptTmpl = template.Must(template.New("classify").Parse(classifyTemplate))

// ClassifyPromptData holds the dynamic parts of the classification prompt.
type ClassifyPromptData struct {
	// Options is the human-readable list of allowed answers.
	Options string
	// Refusal is the answer the model should give when no option fits.
	Refusal string
}

// RenderClassifyPrompt renders the classification question.
func RenderClassifyPrompt(data ClassifyPromptData) (string, error) {
	return renderTemplate(classifyPromptTmpl, data)
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
