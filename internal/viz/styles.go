package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusFailed = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Good = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Fair = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	Poor = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Conditioning thresholds for coloring.
const (
	FairConditioning = 10.0
	PoorConditioning = 1e3
)

// ConditionStyle picks a color for a condition number.
func ConditionStyle(c float64) lipgloss.Style {
	switch {
	case c >= PoorConditioning || math.IsNaN(c):
		return Poor
	case c >= FairConditioning:
		return Fair
	}
	return Good
}

// ConditioningBar fills in proportion to log10 of the condition number,
// full at 1e6.
func ConditioningBar(c float64, width int) string {
	frac := 1.0
	if c >= 1 && !math.IsInf(c, 1) {
		frac = math.Log10(c) / 6
	}
	filled := int(math.Round(frac * float64(width)))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return ConditionStyle(c).Render(bar)
}

// Sparkline draws values as one row of block characters, sampled down to
// width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng <= 0 || math.IsInf(rng, 0) || math.IsNaN(rng) {
		rng = 1
	}

	step := max(1, len(values)/width)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		idx := len(chars) - 1
		if !math.IsInf(v, 1) && !math.IsNaN(v) {
			idx = int((v - lo) / rng * float64(len(chars)-1))
		}
		b.WriteRune(chars[max(0, min(len(chars)-1, idx))])
	}
	return b.String()
}

// Matrix renders m in a titled panel.
func Matrix(title string, m mat.Matrix) string {
	r, c := m.Dims()
	var b strings.Builder
	if r == 0 || c == 0 {
		b.WriteString(Subtle.Render("(empty)"))
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			fmt.Fprintf(&b, "%9.4f", m.At(i, j))
		}
		if i < r-1 {
			b.WriteByte('\n')
		}
	}
	return Panel.Render(Title.Render(title) + "\n" + b.String())
}

// Row renders a label and a value on one line.
func Row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}
