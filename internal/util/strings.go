package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text cut short by Shorten and FitWidth.
const Ellipsis = "…"

// Shorten cuts s to at most maxLen runes, ending in Ellipsis when cut. It is
// meant for plain values such as event payloads; use FitWidth for styled text.
func Shorten(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + Ellipsis
}

// FitWidth cuts s to at most width terminal columns, keeping ANSI styling
// intact. A width of zero or less means the width is unknown and s is
// returned unchanged.
func FitWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	// The tail counts toward width
	return ansi.Truncate(s, width, Ellipsis)
}
