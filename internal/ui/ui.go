// Package ui holds the small set of lipgloss styles used for CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// RenderPass styles a success marker.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles a warning marker.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderErr styles an error marker.
func RenderErr(s string) string { return errStyle.Render(s) }

// RenderAccent styles an informational marker.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderDim styles secondary detail text.
func RenderDim(s string) string { return dimStyle.Render(s) }
