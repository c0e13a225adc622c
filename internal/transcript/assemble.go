// Package transcript turns recognized speech and captured text into prompt text.
package transcript

import "strings"

// Assemble joins recognized segments with whitespace collapsed.
func Assemble(segments []string) string {
	return strings.Join(strings.Fields(strings.Join(segments, " ")), " ")
}

// DefaultSelectionInstruction is used when selected text arrives without a spoken request.
const DefaultSelectionInstruction = "Help me with the following selected text."

// Parts are the inputs a run collected before calling the model.
type Parts struct {
	Utterance string
	Selection string
}

// Prompt renders parts as model input. An empty result means nothing was collected.
func Prompt(parts Parts) string {
	utterance := strings.TrimSpace(parts.Utterance)
	selection := strings.TrimSpace(parts.Selection)

	switch {
	case selection == "":
		return utterance
	case utterance == "":
		utterance = DefaultSelectionInstruction
	}

	var b strings.Builder
	b.WriteString(utterance)
	b.WriteString("\n\nSelected text:\n")
	b.WriteString(selection)
	return b.String()
}
