package classify

import "strings"

// Category is the token used in target directories and file names.
type Category string

const (
	AdultMale           Category = "dada"
	AdultFemale         Category = "mama"
	ChildWithGlasses    Category = "capy"
	ChildWithoutGlasses Category = "platy"
)

// Categories lists every category in prompt order.
var Categories = []Category{AdultMale, AdultFemale, ChildWithGlasses, ChildWithoutGlasses}

var phrases = map[Category]string{
	AdultMale:           "adult male",
	AdultFemale:         "adult female",
	ChildWithGlasses:    "child with glasses",
	ChildWithoutGlasses: "child without glasses",
}

// Phrase returns the answer the vision model is asked to give for c.
func (c Category) Phrase() string {
	return phrases[c]
}

// Shortcut returns the single key that selects c during manual choice.
func (c Category) Shortcut() byte {
	if c == "" {
		return 0
	}
	return c[0]
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	_, ok := phrases[c]
	return ok
}

// CategoryForShortcut maps a keypress to a category. Upper-case keys are accepted.
func CategoryForShortcut(key byte) (Category, bool) {
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	for _, c := range Categories {
		if c.Shortcut() == key {
			return c, true
		}
	}
	return "", false
}

// CategoryForPhrase maps a model answer to a category using an exact,
// case-insensitive comparison after trimming surrounding whitespace.
func CategoryForPhrase(text string) (Category, bool) {
	text = strings.TrimSpace(text)
	for _, c := range Categories {
		if strings.EqualFold(text, c.Phrase()) {
			return c, true
		}
	}
	return "", false
}

// ShortcutMenu renders the manual-choice menu, e.g. "[d]ada [m]ama [c]apy [p]laty".
func ShortcutMenu() string {
	parts := make([]string, 0, len(Categories))
	for _, c := range Categories {
		s := string(c)
		parts = append(parts, "["+s[:1]+"]"+s[1:])
	}
	return strings.Join(parts, " ")
}
