package classify

import (
	"strings"

	"github.com/fpang/lapse-classify/internal/assets"
)

// Refusal is the answer the model is told to give when no category fits.
// It normalizes to an unrecognized outcome like any other free text.
const Refusal = "unable to classify"

// Prompt asks the model for exactly one of the category phrases.
var Prompt = mustPrompt()

func mustPrompt() string {
	p, err := assets.RenderClassifyPrompt(assets.ClassifyPromptData{
		Options: "an " + optionList(),
		Refusal: Refusal,
	})
	if err != nil {
		panic(err)
	}
	return p
}

const maxOutputTokens = 1024

// optionList joins the category phrases as "a, b, c, or d".
func optionList() string {
	phrases := make([]string, len(Categories))
	for i, c := range Categories {
		phrases[i] = c.Phrase()
	}
	if len(phrases) < 2 {
		return strings.Join(phrases, "")
	}
	return strings.Join(phrases[:len(phrases)-1], ", ") + ", or " + phrases[len(phrases)-1]
}
