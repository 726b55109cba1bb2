// Package color defines the canonical terminal color palette shared across CLI output.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a raw ANSI color code into a lipgloss.Color.
func New(c string) lipgloss.Color {
	return lipgloss.Color(c)
}

// Palette of colors used across the CLI.
var (
	Purple = New("93")
	Blue   = New("33")
	Cyan   = New("36")
	Green  = New("35")
	Red    = New("31")
	Yellow = New("220")
	HiRed  = New("196")
)
