package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// TerminalOptions configures ANSI rendering of a markdown report.
type TerminalOptions struct {
	// Style is a glamour style name ("dark", "light", "notty"); empty picks
	// one from the terminal background.
	Style    string
	WordWrap int
}

// Terminal renders a markdown report for display in a terminal.
func Terminal(markdown string, opts TerminalOptions) (string, error) {
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 100
	}

	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStylePath(opts.Style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
