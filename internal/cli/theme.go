// Package cli holds shared rendering helpers for command output.
package cli

import (
	"charm.land/lipgloss/v2"
)

// Colors
var (
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(Success)
	errorStyle   = lipgloss.NewStyle().Foreground(Error)
	mutedStyle   = lipgloss.NewStyle().Foreground(Muted)
)

// Outcome renders a success/failure marker for a mutation result line.
func Outcome(success bool) string {
	if success {
		return successStyle.Render("ok")
	}
	return errorStyle.Render("failed")
}

// Dim renders secondary detail text.
func Dim(s string) string {
	return mutedStyle.Render(s)
}
