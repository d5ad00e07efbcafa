package widgets

import (
	"fmt"
	"strings"

	"stockdeck/internal/project"
)

// Gauge renders the projected-stock bar with safety/reorder/target markers,
// the terminal cousin of the web dashboard's StockGauge.
type Gauge struct {
	Gauge project.Gauge
}

func (g Gauge) Render(width int) string {
	barWidth := width - 2
	if barWidth < 20 {
		barWidth = 20
	}

	fill := int(g.Gauge.Fraction(g.Gauge.Projected) * float64(barWidth))
	bar := []rune(strings.Repeat("█", fill) + strings.Repeat("░", barWidth-fill))

	// Threshold markers overwrite the bar cell at their position.
	for _, mark := range []struct {
		value float64
		glyph rune
	}{
		{g.Gauge.Safety, 'S'},
		{g.Gauge.Reorder, 'R'},
		{g.Gauge.Target, 'T'},
	} {
		pos := int(g.Gauge.Fraction(mark.value) * float64(barWidth))
		if pos >= barWidth {
			pos = barWidth - 1
		}
		bar[pos] = mark.glyph
	}

	legend := fmt.Sprintf("Projected %.0f   S)afety %.0f   R)eorder %.0f   T)arget %.0f",
		g.Gauge.Projected, g.Gauge.Safety, g.Gauge.Reorder, g.Gauge.Target)
	return string(bar) + "\n" + legend
}
