package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{" what is", "on my\tscreen", "\nright now"})
	require.Equal(t, "what is on my screen right now", got)
}

func TestAssembleEmptyInput(t *testing.T) {
	t.Parallel()

	require.Empty(t, Assemble(nil))
	require.Empty(t, Assemble([]string{"  ", "\n\t"}))
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parts Parts
		want  string
	}{
		{name: "utterance only", parts: Parts{Utterance: "  list my files "}, want: "list my files"},
		{name: "empty", parts: Parts{Utterance: " ", Selection: "\n"}, want: ""},
		{
			name:  "selection only",
			parts: Parts{Selection: "func main() {}"},
			want:  DefaultSelectionInstruction + "\n\nSelected text:\nfunc main() {}",
		},
		{
			name:  "utterance and selection",
			parts: Parts{Utterance: "translate this", Selection: " bonjour "},
			want:  "translate this\n\nSelected text:\nbonjour",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Prompt(tc.parts))
		})
	}
}
