// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders the rows of a combined data file as a
// scatter plot of read rate against event-loop time.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/iobench/benchmetrics/sample"
)

const (
	width  = 16 * vg.Centimeter
	height = 10 * vg.Centimeter
	dpi    = 150
)

// Options selects the output directories. An empty directory
// disables that format.
type Options struct {
	PNGDir string
	SVGDir string

	// Root is the results directory the data files live under.
	// Chart names are derived from paths relative to Root.
	Root string
}

// Name returns the file name, without extension, used for the chart
// of the data file at path. It is the path relative to root with its
// extension removed and separators replaced by "_", so that
// results/ttree/readspeed_data_505.data and
// results/rntuple/readspeed_data_505.data chart to distinct files.
// If path is not under root, Name uses the base name.
func Name(root, path string) string {
	rel := filepath.Base(path)
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
}

// New builds the plot for rows. title labels the plot.
func New(title string, rows []sample.Row) (*plot.Plot, error) {
	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i].X = r.WallTime
		pts[i].Y = r.ReadRate
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "event loop time (s)"
	pl.Y.Label.Text = "read rate (MB/s)"

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = color.NRGBA{0, 0, 0xFF, 0xFF}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	pl.Add(sc)

	pl.X.Min, pl.Y.Min = 0, 0
	return pl, nil
}

// Write renders rows from the data file at path into each directory
// enabled in opts and returns the files written.
func Write(path string, rows []sample.Row, opts Options) ([]string, error) {
	if opts.PNGDir == "" && opts.SVGDir == "" {
		return nil, nil
	}
	name := Name(opts.Root, path)
	pl, err := New(name, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var written []string
	do := func(dir, sfx string, can vg.CanvasWriterTo) error {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
		file := filepath.Join(dir, name) + "." + sfx
		f, err := os.Create(file)
		if err != nil {
			return err
		}
		pl.Draw(draw.New(can))
		if _, err := can.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, file)
		return nil
	}

	if opts.PNGDir != "" {
		png := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
		if err := do(opts.PNGDir, "png", png); err != nil {
			return written, err
		}
	}
	if opts.SVGDir != "" {
		if err := do(opts.SVGDir, "svg", vgsvg.New(width, height)); err != nil {
			return written, err
		}
	}
	return written, nil
}
