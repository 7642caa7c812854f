// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package plots renders simulation recordings into figure files: a Figure
is a vertical stack of panels sharing the time axis, each holding one or
more traces, saved as pdf, png or svg depending on the file extension.
*/
package plots

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

var (
	// ErrFormat is returned for file extensions that cannot be rendered
	ErrFormat = errors.New("plots: unsupported file format")

	// ErrEmpty is returned for figures without panels or series with
	// mismatched lengths
	ErrEmpty = errors.New("plots: nothing to plot")
)

// Style is how a series is drawn
type Style int

const (
	// Lines connects the points
	Lines Style = iota

	// Points draws a dot per point
	Points

	// Steps draws a filled histogram outline, with X the left bin edges
	Steps
)

// Series is one trace of a panel
type Series struct {
	Name  string
	X     []float64
	Y     []float64
	Style Style

	// Color of the series; nil picks from the default palette
	Color color.Color

	// Width of lines or radius of points; 0 uses the default
	Width vg.Length
}

// Panel is one plot of a Figure
type Panel struct {
	YLabel string
	Series []Series
}

// Figure is a vertical stack of panels with a title on top and the x
// label on the bottom panel.
type Figure struct {
	Title  string
	XLabel string
	Panels []Panel
}

// NewFigure returns a figure with n empty panels
func NewFigure(title, xlabel string, n int) *Figure {
	return &Figure{Title: title, XLabel: xlabel, Panels: make([]Panel, n)}
}

// Add appends a series to panel i
func (fg *Figure) Add(i int, s Series) {
	fg.Panels[i].Series = append(fg.Panels[i].Series, s)
}

// Default page size, in the 6.4 x 4.8 inch proportions of common figure tools
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
)

// Save renders the figure into path with the given size (0 uses the
// defaults), in the format given by the extension: .pdf, .png or .svg.
func (fg *Figure) Save(path string, w, h vg.Length) error {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cw vg.CanvasWriterTo
	switch ext {
	case ".png":
		cw = vgimg.PngCanvas{Canvas: vgimg.New(w, h)}
	case ".pdf":
		cw = vgpdf.New(w, h)
	case ".svg":
		cw = vgsvg.New(w, h)
	default:
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	if err := fg.Draw(draw.New(cw)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := cw.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Draw renders the figure onto the canvas
func (fg *Figure) Draw(dc draw.Canvas) error {
	pls, err := fg.Plots()
	if err != nil {
		return err
	}
	rows := make([][]*plot.Plot, len(pls))
	for i, p := range pls {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(pls),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(6),
	}
	cs := plot.Align(rows, tiles, dc)
	for i, p := range pls {
		p.Draw(cs[i][0])
	}
	return nil
}

// Plots builds one plot per panel
func (fg *Figure) Plots() ([]*plot.Plot, error) {
	if len(fg.Panels) == 0 {
		return nil, fmt.Errorf("%w: figure %q has no panels", ErrEmpty, fg.Title)
	}
	pls := make([]*plot.Plot, len(fg.Panels))
	xmin, xmax := fg.xRange()
	for i, pn := range fg.Panels {
		p := plot.New()
		if i == 0 {
			p.Title.Text = fg.Title
		}
		if i == len(fg.Panels)-1 {
			p.X.Label.Text = fg.XLabel
		}
		p.Y.Label.Text = pn.YLabel
		if err := addSeries(p, pn.Series); err != nil {
			return nil, fmt.Errorf("%q panel %d: %w", fg.Title, i, err)
		}
		if xmin < xmax {
			p.X.Min, p.X.Max = xmin, xmax
		}
		ymin, ymax := yRange(pn.Series)
		p.Y.Min, p.Y.Max = ymin, ymax
		if len(pn.Series) > 1 && pn.Series[0].Name != "" {
			p.Legend.Top = true
		}
		pls[i] = p
	}
	return pls, nil
}

func addSeries(p *plot.Plot, ss []Series) error {
	for si, s := range ss {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("%w: series %q has %d x and %d y values", ErrEmpty, s.Name, len(s.X), len(s.Y))
		}
		if len(s.X) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.X))
		for i := range xys {
			xys[i].X = s.X[i]
			xys[i].Y = s.Y[i]
		}
		clr := s.Color
		if clr == nil {
			clr = plotutil.Color(si)
		}
		switch s.Style {
		case Points:
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return err
			}
			sc.GlyphStyle.Color = clr
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(0.8)
			if s.Width > 0 {
				sc.GlyphStyle.Radius = s.Width
			}
			p.Add(sc)
			if s.Name != "" {
				p.Legend.Add(s.Name, sc)
			}
		default:
			ln, err := plotter.NewLine(xys)
			if err != nil {
				return err
			}
			ln.LineStyle.Color = clr
			ln.LineStyle.Width = vg.Points(1)
			if s.Width > 0 {
				ln.LineStyle.Width = s.Width
			}
			if s.Style == Steps {
				ln.StepStyle = plotter.PostStep
				ln.FillColor = clr
			}
			p.Add(ln)
			if s.Name != "" {
				p.Legend.Add(s.Name, ln)
			}
		}
	}
	return nil
}

// xRange is the common x extent of all series
func (fg *Figure) xRange() (float64, float64) {
	var xs []float64
	for _, pn := range fg.Panels {
		for _, s := range pn.Series {
			if len(s.X) > 0 {
				xs = append(xs, floats.Min(s.X), floats.Max(s.X))
			}
		}
	}
	if len(xs) == 0 {
		return 0, 1
	}
	return floats.Min(xs), floats.Max(xs)
}

// yRange is the y extent of the series, padded by 5%
func yRange(ss []Series) (float64, float64) {
	var ys []float64
	for _, s := range ss {
		if len(s.Y) > 0 {
			ys = append(ys, floats.Min(s.Y), floats.Max(s.Y))
		}
	}
	if len(ys) == 0 {
		return 0, 1
	}
	mn, mx := floats.Min(ys), floats.Max(ys)
	if mn == mx {
		return mn - 1, mx + 1
	}
	pad := 0.05 * (mx - mn)
	return mn - pad, mx + pad
}
