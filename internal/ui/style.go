package ui

import "github.com/charmbracelet/lipgloss"

var TitleStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("252")).Render
var HelpStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("241")).Render
var OkStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("42")).Render
var ErrorStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("203")).Render

var BaseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

// Status renders ok or error styling depending on success.
func Status(success bool, text string) string {
	if success {
		return OkStyle(text)
	}
	return ErrorStyle(text)
}
