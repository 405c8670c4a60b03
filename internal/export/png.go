package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/odesketch/internal/coords"
)

type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
	Bounds Bounds
	// Width and Height are in inches.
	Width  float64
	Height float64
	DPI    int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{XLabel: "x", YLabel: "y", Width: 8, Height: 6, DPI: 150}
}

// NewPlot builds a line plot of the finite runs of points.
func NewPlot(points []coords.Point, opts PlotOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	drawn := 0
	for _, seg := range finiteSegments(points) {
		pts := make(plotter.XYs, len(seg))
		for i, pt := range seg {
			pts[i].X = pt.X
			pts[i].Y = pt.Y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = color.RGBA{R: 0, G: 160, B: 90, A: 255}
		p.Add(line)
		drawn += len(seg)
	}
	if drawn == 0 {
		return nil, fmt.Errorf("export: no finite points to plot")
	}

	if !opts.Bounds.IsZero() {
		p.X.Min, p.X.Max = opts.Bounds.MinX, opts.Bounds.MaxX
		p.Y.Min, p.Y.Max = opts.Bounds.MinY, opts.Bounds.MaxY
	}
	return p, nil
}

func finiteSegments(points []coords.Point) [][]coords.Point {
	var segs [][]coords.Point
	var cur []coords.Point
	for _, p := range points {
		if !p.IsFinite() {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

func WritePNG(w io.Writer, points []coords.Point, opts PlotOptions) error {
	p, err := NewPlot(points, opts)
	if err != nil {
		return err
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func ExportPNG(path string, points []coords.Point, opts PlotOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()
	return WritePNG(f, points, opts)
}
