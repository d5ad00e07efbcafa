package widgets

import (
	"fmt"
	"strings"

	"stockdeck/internal/project"
)

// LineChart renders projector chart output as per-label horizontal bars,
// one bar group per date. All series share one scale so relative heights
// read the same as the web chart this replaces.
type LineChart struct {
	Title string
	Chart project.Chart
}

func seriesGlyph(s project.Series) string {
	if s.Dashed {
		return "╌"
	}
	if s.Filled {
		return "█"
	}
	return "─"
}

func (c LineChart) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(c.Chart.Labels) == 0 {
		return c.Title + "\n(no data)"
	}
	maxV := 0.0
	for _, s := range c.Chart.Series {
		for _, v := range s.Data {
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxV <= 0 {
		maxV = 1
	}

	barWidth := width - 24
	if barWidth < 8 {
		barWidth = 8
	}

	lines := []string{c.Title}
	if legend := c.legend(); legend != "" {
		lines = append(lines, legend)
	}
	for i, label := range c.Chart.Labels {
		for _, s := range c.Chart.Series {
			if i >= len(s.Data) {
				continue
			}
			w := int((s.Data[i] / maxV) * float64(barWidth))
			if w < 1 {
				w = 1
			}
			lines = append(lines, fmt.Sprintf("%-12s %s %.1f", label, strings.Repeat(seriesGlyph(s), w), s.Data[i]))
		}
		if len(lines) >= height {
			return strings.Join(lines[:height], "\n")
		}
	}
	return strings.Join(lines, "\n")
}

func (c LineChart) legend() string {
	parts := make([]string, 0, len(c.Chart.Series))
	for _, s := range c.Chart.Series {
		parts = append(parts, seriesGlyph(s)+" "+s.Label)
	}
	return strings.Join(parts, "   ")
}
