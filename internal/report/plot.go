// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tomtom215/reelscore/internal/table"
)

const (
	plotTitle  = "IMDb Ratings vs. Release Year"
	plotXLabel = "Year"
	plotYLabel = "IMDb Rating"
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// scatterColor is a half transparent blue.
var scatterColor = color.NRGBA{R: 31, G: 119, B: 180, A: 128}

// ScatterPlot renders ratings against release years as a PNG.
func ScatterPlot(path string, years, ratings []float64) error {
	if len(years) != len(ratings) {
		return fmt.Errorf("scatter plot: %d years but %d ratings", len(years), len(ratings))
	}
	if len(years) == 0 {
		return errors.New("scatter plot: no points")
	}

	pts := make(plotter.XYs, len(years))
	for i := range years {
		pts[i].X = years[i]
		pts[i].Y = ratings[i]
	}

	p := plot.New()
	p.Title.Text = plotTitle
	p.X.Label.Text = plotXLabel
	p.Y.Label.Text = plotYLabel
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter plot: %w", err)
	}
	s.GlyphStyle.Color = scatterColor
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)

	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render scatter plot: %w", err)
	}
	return table.WriteAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}
