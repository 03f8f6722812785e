package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown for the terminal.
// When styled is false, or glamour cannot be initialized, markdown is returned as is.
func NewRenderer(styled bool) func(string) (string, error) {
	plain := func(markdown string) (string, error) { return markdown, nil }
	if !styled {
		return plain
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return plain
	}
	return r.Render
}
