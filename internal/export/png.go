package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"climbprofile/internal/profile"
)

// Size is the printed size of an exported image
type Size struct {
	WidthIn  float64
	HeightIn float64
}

// DefaultSize matches the default display config
var DefaultSize = Size{WidthIn: 10, HeightIn: 4}

// ErrNoSections is returned when there is nothing to draw
var ErrNoSections = errors.New("profile has no sections")

// WriteChartPNG draws the altitude profile over distance, each section
// filled in the colour of its gradient class.
func WriteChartPNG(w io.Writer, cp *profile.ClimbProfile, title string, size Size) error {
	if len(cp.Sections) == 0 {
		return ErrNoSections
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Distance (km)"
	p.Y.Label.Text = "Altitude (m)"

	line := altitudeLine(cp)
	floor := chartFloor(cp)
	p.Y.Min = floor

	seen := make(map[profile.Class]bool)
	for i, sec := range cp.Sections {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: line[i].X, Y: floor},
			line[i],
			line[i+1],
			{X: line[i+1].X, Y: floor},
		})
		if err != nil {
			return fmt.Errorf("section %d: %w", sec.Index, err)
		}
		class := profile.GradientClass(float64(sec.Gradient))
		poly.Color = ClassColor(class)
		poly.LineStyle.Width = 0
		p.Add(poly)

		if !seen[class] {
			seen[class] = true
			p.Legend.Add(class.String(), poly)
		}
	}

	l, err := plotter.NewLine(line)
	if err != nil {
		return fmt.Errorf("altitude line: %w", err)
	}
	l.Color = lineColor
	l.Width = vg.Points(1.5)
	p.Add(l)

	p.Legend.Top = true
	return writePNG(w, p, size)
}

// altitudeLine is the chart outline: the elevation at the start of the
// range followed by the representative altitude at the end of every section.
// X is in km from the start of the full route.
func altitudeLine(cp *profile.ClimbProfile) plotter.XYs {
	first := cp.Sections[0]
	pts := make(plotter.XYs, 0, len(cp.Sections)+1)
	pts = append(pts, plotter.XY{X: cp.Offset + first.Start, Y: first.Altitude - first.Delta})
	for _, sec := range cp.Sections {
		pts = append(pts, plotter.XY{X: cp.Offset + sec.End, Y: sec.Altitude})
	}
	return pts
}

// chartFloor leaves a margin below the lowest point so flat routes still
// show a filled area.
func chartFloor(cp *profile.ClimbProfile) float64 {
	span := cp.MaxElevation - cp.MinElevation
	margin := math.Max(span*0.1, 10)
	return math.Floor((cp.MinElevation-margin)/10) * 10
}

// WriteRoutePNG draws the sub-route from above, coloured by gradient
func WriteRoutePNG(w io.Writer, ov *profile.RouteOverlay, title string, size Size) error {
	if len(ov.Segments) == 0 {
		return ErrNoSections
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.HideAxes()

	seen := make(map[profile.Class]bool)
	for _, run := range classRuns(ov.Segments) {
		l, err := plotter.NewLine(run.points)
		if err != nil {
			return fmt.Errorf("route line: %w", err)
		}
		l.Color = ClassColor(run.class)
		l.Width = vg.Points(2.5)
		l.LineStyle.Dashes = nil
		p.Add(l)

		if !seen[run.class] {
			seen[run.class] = true
			p.Legend.Add(run.class.String(), l)
		}
	}

	start, err := plotter.NewScatter(plotter.XYs{{X: ov.Segments[0].FromLon, Y: ov.Segments[0].FromLat}})
	if err != nil {
		return fmt.Errorf("start marker: %w", err)
	}
	start.Shape = draw.CircleGlyph{}
	start.Radius = vg.Points(4)
	start.Color = lineColor
	p.Add(start)

	p.Legend.Top = true
	p.Legend.Left = true
	return writePNG(w, p, size)
}

type classRun struct {
	class  profile.Class
	points plotter.XYs
}

// classRuns joins consecutive segments of the same class into one polyline
func classRuns(segs []profile.RouteSegment) []classRun {
	var runs []classRun
	for _, s := range segs {
		to := plotter.XY{X: s.ToLon, Y: s.ToLat}
		if n := len(runs); n > 0 && runs[n-1].class == s.Class {
			runs[n-1].points = append(runs[n-1].points, to)
			continue
		}
		runs = append(runs, classRun{
			class:  s.Class,
			points: plotter.XYs{{X: s.FromLon, Y: s.FromLat}, to},
		})
	}
	return runs
}

func writePNG(w io.Writer, p *plot.Plot, size Size) error {
	if size.WidthIn <= 0 || size.HeightIn <= 0 {
		size = DefaultSize
	}
	wt, err := p.WriterTo(vg.Length(size.WidthIn)*vg.Inch, vg.Length(size.HeightIn)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("rendering png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}
