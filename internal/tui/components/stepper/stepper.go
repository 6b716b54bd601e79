// Package stepper renders the intake progress indicator.
package stepper

import (
	"fmt"
	"strings"

	"github.com/alkime/monshin/internal/tui/style"
)

// Model is a row of numbered steps with the current one highlighted.
// Current is 1-based to match intake step numbers.
type Model struct {
	Labels  []string
	Current int
}

func New(labels ...string) Model {
	return Model{Labels: labels, Current: 1}
}

// Title returns the label of the current step, or "" when out of range.
func (m Model) Title() string {
	if m.Current < 1 || m.Current > len(m.Labels) {
		return ""
	}

	return m.Labels[m.Current-1]
}

func (m Model) View() string {
	parts := make([]string, 0, len(m.Labels))

	for i, label := range m.Labels {
		n := i + 1
		cell := fmt.Sprintf("%d %s", n, label)

		switch {
		case n < m.Current:
			parts = append(parts, style.StepDone.Render("✓ "+label))
		case n == m.Current:
			parts = append(parts, style.StepCurrent.Render("["+cell+"]"))
		default:
			parts = append(parts, style.StepTodo.Render(cell))
		}
	}

	return strings.Join(parts, style.StepTodo.Render(" ─ "))
}
