package assets

import (
	"strings"
	"testing"
	"text/template"
)

func TestRenderClassifyPrompt(t *testing.T) {
	got, err := RenderClassifyPrompt(ClassifyPromptData{Options: "red or blue", Refusal: "no idea"})
	if err != nil {
		t.Fatalf("RenderClassifyPrompt: %v", err)
	}

	want := "Is this person red or blue? Reply with only exactly one of those options or 'no idea'. " +
		"Do not reply with any other text whatsoever."
	if got != want {
		t.Errorf("RenderClassifyPrompt() =\n%q\nwant\n%q", got, want)
	}
	if strings.Contains(got, "{{") {
		t.Error("unrendered template action in prompt")
	}
}

func TestRenderTemplateError(t *testing.T) {
	tmpl := template.Must(template.New("broken").Parse("{{.Missing}}"))

	got, err := renderTemplate(tmpl, ClassifyPromptData{})
	if err == nil {
		t.Fatalf("renderTemplate() = %q, want error", got)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the template", err)
	}
}
