package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge renders a bar for a value inside [lo, hi].
func (s styles) Gauge(value, lo, hi float64, width int) string {
	frac := 0.0
	if hi > lo {
		frac = (value - lo) / (hi - lo)
	}
	filled := int(frac * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		return s.good.Render(bar)
	case frac > 0.4:
		return s.warn.Render(bar)
	}
	return s.alert.Render(bar)
}

// row renders one "label value" line of the stats panel.
func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value) + "\n"
}

// Separator is a thin rule with a centre diamond.
func Separator(width int, color lipgloss.Color) string {
	if width < 8 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return lipgloss.NewStyle().Foreground(color).Render(left + " ◆ " + right)
}
