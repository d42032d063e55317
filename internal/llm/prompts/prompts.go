// Package prompts renders tutor prompts from embedded text templates.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var FS embed.FS

var (
	learnerAnswerRegex      = regexp.MustCompile(`(?i)</?\s*learner-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// maxAnswerRunes limits how much learner input reaches the model.
const maxAnswerRunes = 64

// Variant selects how much the tutor says.
type Variant string

const (
	// VariantBrief gives a single hint.
	VariantBrief Variant = "brief"
	// VariantStandard is the default explanation.
	VariantStandard Variant = "standard"
	// VariantDetailed walks through the computation.
	VariantDetailed Variant = "detailed"
)

var validVariants = map[Variant]bool{
	VariantBrief:    true,
	VariantStandard: true,
	VariantDetailed: true,
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Variant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// BlankData describes one blank of the step being explained.
type BlankData struct {
	Label        string
	Answer       string
	State        string
	Correct      string
	ShowSolution bool
}

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	Language    string
	Title       string
	Description string
	Instruction string
	Explanation string
	Template    string
	StepNumber  int
	StepCount   int
	Blanks      []BlankData
}

// Load parses the prompt templates from fsys. Only the first call has an effect.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		templates = make(map[Variant]*template.Template)
		for _, v := range []Variant{VariantBrief, VariantStandard, VariantDetailed} {
			file := "templates/explain_" + string(v) + ".txt"
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", file, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", file, err)
				return
			}
			templates[v] = tmpl
		}
	})
	return loadErr
}

// BuildExplainPrompt renders the system prompt for variant.
func BuildExplainPrompt(variant Variant, data ExplainData) (string, error) {
	if templates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := templates[variant]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	blanks := make([]BlankData, len(data.Blanks))
	for i, b := range data.Blanks {
		b.Answer = SanitizeAnswer(b.Answer)
		blanks[i] = b
	}
	data.Blanks = blanks

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SanitizeAnswer strips prompt delimiters from learner input and truncates it.
func SanitizeAnswer(answer string) string {
	answer = learnerAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[empty]"
	}
	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + " [truncated]"
	}
	return answer
}
