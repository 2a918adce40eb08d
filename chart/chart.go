// Package chart renders engine results as static images with gonum/plot.
//
// Every function takes the plain result value an engine returns and builds a
// *plot.Plot; Save and Encode write it as PNG, SVG or PDF. Nothing here feeds
// back into the computations.
package chart

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/simulix/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 既定の画像サイズ
var (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Save は拡張子（.png, .svg, .pdf など）から形式を決めて p を path に保存する
func Save(p *plot.Plot, path string) error {
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return errors.Wrapf(err, "save chart %s", path)
	}
	return nil
}

// Encode は p を format（"png", "svg", "pdf"）で w に書く
func Encode(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "encode chart as %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write chart")
	}
	return nil
}

// FormatOf はファイル名の拡張子を Encode の形式名として返す
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// addLine は i 番目のスタイルで折れ線を追加し、凡例に name を登録する
func addLine(p *plot.Plot, i int, name string, xys plotter.XYs) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(err, "line %q", name)
	}
	l.LineStyle.Color = plotutil.Color(i)
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Dashes = plotutil.Dashes(i)
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

// addPoints は i 番目の色で散布図を追加する
func addPoints(p *plot.Plot, i int, name string, xys plotter.XYs, radius vg.Length) error {
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrapf(err, "scatter %q", name)
	}
	s.GlyphStyle.Color = plotutil.Color(i)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = radius
	p.Add(s)
	if name != "" {
		p.Legend.Add(name, s)
	}
	return nil
}

func series(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	out := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		out[i].X = xs[i]
		out[i].Y = ys[i]
	}
	return out
}

func indexed(ys []float64) plotter.XYs {
	out := make(plotter.XYs, len(ys))
	for i, y := range ys {
		out[i].X = float64(i)
		out[i].Y = y
	}
	return out
}
