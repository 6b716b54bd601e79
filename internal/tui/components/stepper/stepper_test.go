package stepper_test

import (
	"testing"

	"github.com/alkime/monshin/internal/tui/components/stepper"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestStepper(t *testing.T) {
	m := stepper.New("患者情報", "症状入力", "確認")

	t.Run("first step is current", func(t *testing.T) {
		v := m.View()
		assert.Contains(t, v, "[1 患者情報]")
		assert.Contains(t, v, "2 症状入力")
		assert.Equal(t, "患者情報", m.Title())
	})

	t.Run("earlier steps are marked done", func(t *testing.T) {
		m.Current = 3
		v := m.View()
		assert.Contains(t, v, "✓ 患者情報")
		assert.Contains(t, v, "✓ 症状入力")
		assert.Contains(t, v, "[3 確認]")
	})

	t.Run("out of range has no title", func(t *testing.T) {
		m.Current = 0
		assert.Empty(t, m.Title())
		m.Current = 4
		assert.Empty(t, m.Title())
	})
}
