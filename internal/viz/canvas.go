package viz

import (
	"math"
	"strings"

	"github.com/san-kum/odesketch/internal/config"
	"github.com/san-kum/odesketch/internal/coords"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 1), max(h, 1)
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights a dot in sub-pixel coordinates. The canvas is
// (Width*2) x (Height*4) dots; anything outside is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Window is the part of the (x, y) plane mapped onto a canvas.
type Window struct {
	XMin, XMax, YMin, YMax float64
}

func WindowFromPlot(p config.PlotConfig) Window {
	return Window{XMin: p.XMin, XMax: p.XMax, YMin: p.YMin, YMax: p.YMax}
}

func (w Window) Valid() bool {
	return w.XMax > w.XMin && w.YMax > w.YMin
}

// Step is the plane distance covered by one canvas dot horizontally.
func (w Window) Step(c *Canvas) float64 {
	return (w.XMax - w.XMin) / float64(c.Width*2)
}

// project maps a plane point to dot coordinates. ok is false when the dot
// lies so far off canvas that a line to it is not worth drawing.
func (c *Canvas) project(w Window, p coords.Point) (x, y int, ok bool) {
	dotsX := float64(c.Width * 2)
	dotsY := float64(c.Height * 4)
	fx := (p.X - w.XMin) / (w.XMax - w.XMin) * (dotsX - 1)
	fy := (w.YMax - p.Y) / (w.YMax - w.YMin) * (dotsY - 1)
	if fx < -dotsX || fx > 2*dotsX || fy < -dotsY || fy > 2*dotsY {
		return 0, 0, false
	}
	return int(math.Round(fx)), int(math.Round(fy)), true
}

// DrawAxes draws the x and y axes when they cross the window.
func (c *Canvas) DrawAxes(w Window) {
	if !w.Valid() {
		return
	}
	if w.YMin <= 0 && w.YMax >= 0 {
		x0, y, _ := c.project(w, coords.Point{X: w.XMin, Y: 0})
		x1, _, _ := c.project(w, coords.Point{X: w.XMax, Y: 0})
		for x := x0; x <= x1; x += 2 {
			c.Set(x, y)
		}
	}
	if w.XMin <= 0 && w.XMax >= 0 {
		x, y0, _ := c.project(w, coords.Point{X: 0, Y: w.YMax})
		_, y1, _ := c.project(w, coords.Point{X: 0, Y: w.YMin})
		for y := y0; y <= y1; y += 2 {
			c.Set(x, y)
		}
	}
}

// DrawCurve joins consecutive points and stops at the first non-finite
// one. It returns how many points were consumed.
func (c *Canvas) DrawCurve(w Window, pts []coords.Point) int {
	if !w.Valid() {
		return 0
	}
	n := 0
	var px, py int
	prev := false
	for _, p := range pts {
		if !p.IsFinite() {
			break
		}
		n++
		x, y, ok := c.project(w, p)
		if !ok {
			prev = false
			continue
		}
		if prev {
			c.DrawLine(px, py, x, y)
		} else {
			c.Set(x, y)
		}
		px, py, prev = x, y, true
	}
	return n
}

// Mark draws a small cross centred on p.
func (c *Canvas) Mark(w Window, p coords.Point) {
	if !w.Valid() || !p.IsFinite() {
		return
	}
	x, y, ok := c.project(w, p)
	if !ok {
		return
	}
	for d := -2; d <= 2; d++ {
		c.Set(x+d, y)
		c.Set(x, y+d)
	}
}

// Plot renders a curve and its starting point on a fresh canvas.
func Plot(w Window, pts []coords.Point, start coords.Point, width, height int) string {
	c := NewCanvas(width, height)
	c.DrawAxes(w)
	c.DrawCurve(w, pts)
	c.Mark(w, start)
	return c.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
