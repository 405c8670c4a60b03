package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/odesketch/internal/coords"
)

// Bounds is the plotted window. A zero Bounds is fitted to the data with
// ten percent padding.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

func (b Bounds) IsZero() bool { return b == Bounds{} }

func fitBounds(points []coords.Point) (Bounds, bool) {
	var b Bounds
	found := false
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		if !found {
			b = Bounds{p.X, p.X, p.Y, p.Y}
			found = true
			continue
		}
		b.MinX = min(b.MinX, p.X)
		b.MaxX = max(b.MaxX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxY = max(b.MaxY, p.Y)
	}
	if !found {
		return b, false
	}

	rangeX := b.MaxX - b.MinX
	rangeY := b.MaxY - b.MinY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.MinX -= rangeX * 0.1
	b.MaxX += rangeX * 0.1
	b.MinY -= rangeY * 0.1
	b.MaxY += rangeY * 0.1
	return b, true
}

// TrajectoryToSVG draws the curve as one path. Non-finite points break the
// path into separate segments.
func TrajectoryToSVG(points []coords.Point, bounds Bounds, width, height int, strokeColor string) string {
	if bounds.IsZero() {
		fitted, ok := fitBounds(points)
		if !ok {
			return ""
		}
		bounds = fitted
	}
	rangeX := bounds.MaxX - bounds.MinX
	rangeY := bounds.MaxY - bounds.MinY
	if rangeX <= 0 || rangeY <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// axes, when the origin is inside the window
	if bounds.MinY <= 0 && bounds.MaxY >= 0 {
		y := float64(height) - (0-bounds.MinY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333"/>
`, y, width, y))
	}
	if bounds.MinX <= 0 && bounds.MaxX >= 0 {
		x := (0 - bounds.MinX) / rangeX * float64(width)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#333333"/>
`, x, x, height))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor))
	pen := false
	for _, p := range points {
		if !p.IsFinite() {
			pen = false
			continue
		}
		x := (p.X - bounds.MinX) / rangeX * float64(width)
		y := float64(height) - (p.Y-bounds.MinY)/rangeY*float64(height)
		if pen {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
			pen = true
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func ExportSVG(path string, points []coords.Point, bounds Bounds, width, height int) error {
	svg := TrajectoryToSVG(points, bounds, width, height, "#00ff88")
	if svg == "" {
		return fmt.Errorf("export: no finite points to draw")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
