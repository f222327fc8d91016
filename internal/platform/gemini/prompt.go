package gemini

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/phrazzld/memoria/internal/generation"
)

//go:embed prompt.tmpl
var defaultPrompt string

var detailDescriptions = map[int]string{
	1: "only the few most essential facts, around 5 flashcards.",
	2: "the main ideas, around 10 flashcards.",
	3: "the main ideas and their important supporting details, around 15 flashcards.",
	4: "most details, around 25 flashcards.",
	5: "everything worth studying, as many flashcards as the material supports.",
}

// promptData is the data passed to the prompt template.
type promptData struct {
	Language          string
	StudyGoal         string
	DetailLevel       int
	DetailDescription string
	Keywords          []string
	Text              string
}

func parsePrompt(text string) (*template.Template, error) {
	tmpl, err := template.New("flashcards").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// renderPrompt executes tmpl for the normalized options. text is the document
// text, or empty when the document is attached as bytes.
func renderPrompt(tmpl *template.Template, opts generation.Options, text string) (string, error) {
	opts = opts.Normalize()
	data := promptData{
		Language:          opts.Language,
		StudyGoal:         opts.StudyGoal,
		DetailLevel:       opts.DetailLevel,
		DetailDescription: detailDescriptions[opts.DetailLevel],
		Keywords:          opts.KeywordList(),
		Text:              text,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
