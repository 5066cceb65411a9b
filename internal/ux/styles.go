package ux

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used by text output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Count   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Insert  lipgloss.Style
	Delete  lipgloss.Style
}

// NewStyles returns the default palette, or unstyled text when noColor is set.
func NewStyles(noColor bool) Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return Styles{
			Title:   plain,
			Header:  plain,
			Label:   plain,
			Count:   plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
			Insert:  plain,
			Delete:  plain,
		}
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Count: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Insert:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Delete:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
