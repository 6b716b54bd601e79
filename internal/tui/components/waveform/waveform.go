// Package waveform renders recent microphone amplitude as block bars so the
// patient can see that they are being heard.
package waveform

import (
	"math"
	"strings"

	"github.com/alkime/monshin/internal/tui/style"
	"github.com/alkime/monshin/pkg/uictl"
)

// Eight fill levels per row, bottom to top. Index 0 is empty.
const blockChars = " ▁▂▃▄▅▆▇█"

const maxAmplitude = 32767.0

// Model reads samples from a Levels control on every render and draws them
// left (older) to right (newer).
type Model struct {
	levels uictl.Levels[int16]
	width  int
	height int
}

func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(width, 1),
		height: max(height, 1),
	}
}

func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	if len(samples) == 0 {
		return m.baseline()
	}

	columns := m.columnLevels(samples)
	runes := []rune(blockChars)
	rows := make([]string, m.height)

	for row := range m.height {
		var sb strings.Builder

		// Row 0 is the top; each row covers eight levels.
		base := (m.height - 1 - row) * 8
		for _, level := range columns {
			sb.WriteRune(runes[min(max(level-base, 0), 8)])
		}

		rows[row] = style.Wave.Render(sb.String())
	}

	return strings.Join(rows, "\n")
}

// columnLevels buckets samples into one peak level (0..height*8) per column.
func (m Model) columnLevels(samples []int16) []int {
	levels := make([]int, m.width)
	bucket := max(1, len(samples)/m.width)
	top := m.height * 8

	for col := range m.width {
		start := col * bucket
		if start >= len(samples) {
			break
		}

		peak := peakAmplitude(samples[start:min(start+bucket, len(samples))])

		// Square root scaling keeps quiet speech visible.
		levels[col] = min(int(math.Sqrt(float64(peak)/maxAmplitude)*float64(top)), top)
	}

	return levels
}

func (m Model) baseline() string {
	rows := make([]string, m.height)
	for row := range m.height - 1 {
		rows[row] = strings.Repeat(" ", m.width)
	}

	rows[m.height-1] = strings.Repeat("▁", m.width)

	return style.Muted.Render(strings.Join(rows, "\n"))
}

func peakAmplitude(samples []int16) int32 {
	var peak int32

	for _, s := range samples {
		a := int32(s)
		if a < 0 {
			a = -a
		}

		peak = max(peak, a)
	}

	return min(peak, maxAmplitude)
}
