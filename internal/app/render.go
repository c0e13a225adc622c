package app

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rbright/lma/internal/config"
	"golang.org/x/term"
)

const defaultWrapWidth = 100

// renderReply formats markdown for a terminal and passes text through otherwise.
func (r Runner) renderReply(reply string, cfg config.OutputConfig) string {
	if !cfg.RenderMarkdown || !r.stdoutIsTerminal() {
		return reply
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth()),
	)
	if err != nil {
		return reply
	}
	out, err := renderer.Render(reply)
	if err != nil {
		return reply
	}
	return strings.TrimRight(out, "\n")
}

func (r Runner) stdoutIsTerminal() bool {
	if r.IsTerminal != nil {
		return r.IsTerminal()
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWrapWidth
	}
	return width
}
