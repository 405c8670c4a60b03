package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the rendered look of one theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Active lipgloss.Style
	Curve  lipgloss.Style
	Panel  lipgloss.Style
	Plot   lipgloss.Style
	Hint   lipgloss.Style
	Key    lipgloss.Style
	Ok     lipgloss.Style
	Warn   lipgloss.Style
	Error  lipgloss.Style

	sparkHigh, sparkMid, sparkLow lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		Value:  lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Active: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Curve:  lipgloss.NewStyle().Foreground(t.Curve),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Plot: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted),
		Hint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Key:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Ok:    lipgloss.NewStyle().Foreground(t.Success),
		Warn:  lipgloss.NewStyle().Foreground(t.Warning),
		Error: lipgloss.NewStyle().Foreground(t.Error).Bold(true),

		sparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a bar strip at most width wide, sampling
// when there are more values than columns.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(sparkChars)-1)), 0), len(sparkChars)-1)
		c := string(sparkChars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(s.sparkMid.Render(c))
		default:
			result.WriteString(s.sparkLow.Render(c))
		}
	}
	return result.String()
}

func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Hint.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Hint.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}

// KeyHelp renders "key action" pairs on one line.
func (s Styles) KeyHelp(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.Key.Render(pairs[i]) + " " + s.Hint.Render(pairs[i+1]))
	}
	return b.String()
}
