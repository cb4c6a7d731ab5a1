package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
	colorDim    = lipgloss.Color("#6b7280") // gray-500
)

// styles holds the lipgloss styles for terminal output.
type styles struct {
	Accent lipgloss.Style
	Dim    lipgloss.Style
}

// newStyles returns colored styles on a TTY and zero-value styles (plain
// text) when output is piped.
func newStyles() *styles {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return &styles{}
	}

	return &styles{
		Accent: lipgloss.NewStyle().Foreground(colorAccent),
		Dim:    lipgloss.NewStyle().Foreground(colorDim),
	}
}
