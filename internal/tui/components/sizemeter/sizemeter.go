// Package sizemeter shows how much of an upload size cap a recording has
// used.
package sizemeter

import (
	"fmt"

	"github.com/alkime/monshin/internal/tui/style"
	"github.com/alkime/monshin/pkg/uictl"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
)

// Model polls a capped dial on every render. A nil dial renders nothing.
type Model struct {
	dial     uictl.CappedDial[int64]
	progress progress.Model
}

func New(dial uictl.CappedDial[int64]) Model {
	return Model{
		dial: dial,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
	}
}

// Percent is the used share of the cap, clamped to [0, 1].
func (m Model) Percent() float64 {
	if m.dial == nil {
		return 0
	}

	current, maxValue := m.dial.Cap()
	if maxValue <= 0 {
		return 0
	}

	return min(max(float64(current)/float64(maxValue), 0), 1)
}

func (m Model) View() string {
	if m.dial == nil {
		return ""
	}

	current, maxValue := m.dial.Cap()

	return m.progress.ViewAs(m.Percent()) + "\n" +
		style.Subtitle.Render(formatBytes(current, maxValue))
}

func formatBytes(current, maxBytes int64) string {
	if maxBytes <= 0 {
		return humanize.IBytes(uint64(max(current, 0))) + " / unlimited"
	}

	percent := int(float64(current) / float64(maxBytes) * 100)

	return fmt.Sprintf("%s / %s (%d%%)",
		humanize.IBytes(uint64(max(current, 0))), humanize.IBytes(uint64(maxBytes)), percent)
}
