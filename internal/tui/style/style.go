// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Variable names omit a "Style" suffix since they're accessed via the
// package (style.Title reads better than style.TitleStyle).
var (
	// Title is used for the clinic header and step titles.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("27"))

	// Subtitle is used for secondary text.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Warning is used for detector advisories.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Card frames a block of reviewable content.
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("33")).
		Padding(0, 1)

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Label is used for form labels and field names.
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Focused marks the form field that receives input.
	Focused = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("33"))

	// Muted is used for de-emphasized text and placeholders.
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	// StepDone, StepCurrent and StepTodo colour the step indicator.
	StepDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StepCurrent = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	StepTodo    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Wave colours the microphone level display.
	Wave = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	// Recording is the live capture indicator.
	Recording = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)
