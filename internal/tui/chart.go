package tui

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"climbprofile/internal/profile"
)

// altitudeSeries is the elevation at the start of the range followed by
// the altitude at the end of every section
func altitudeSeries(cp *profile.ClimbProfile) []float64 {
	if cp == nil || len(cp.Sections) == 0 {
		return nil
	}
	first := cp.Sections[0]
	data := make([]float64, 0, len(cp.Sections)+1)
	data = append(data, first.Altitude-first.Delta)
	for _, sec := range cp.Sections {
		data = append(data, sec.Altitude)
	}
	return data
}

// plotAltitude draws the altitude chart. Short series are stretched to
// width by asciigraph; long ones are averaged down first.
func plotAltitude(cp *profile.ClimbProfile, width, height int, caption string) string {
	data := altitudeSeries(cp)
	if len(data) < 2 {
		return ""
	}
	if len(data) > width {
		data = downsample(data, width)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// axisColumn returns the rune offset where plotted data starts, just right
// of the y axis, so rows drawn underneath line up with the chart.
func axisColumn(chart string) int {
	first, _, _ := strings.Cut(chart, "\n")
	for i, r := range []rune(first) {
		if r == '┤' || r == '┼' {
			return i + 1
		}
	}
	return 0
}

// sectionAt returns the section under column col of a width-wide chart
func sectionAt(cp *profile.ClimbProfile, col, width int) profile.Section {
	pos := cp.Distance
	if width > 1 {
		pos = cp.Distance * float64(col) / float64(width-1)
	}
	for _, sec := range cp.Sections {
		if pos <= sec.End {
			return sec
		}
	}
	return cp.Sections[len(cp.Sections)-1]
}

// gradientStrip is one row of blocks under the chart, each coloured by
// the gradient class of the section below that column.
func gradientStrip(cp *profile.ClimbProfile, width int) string {
	if cp == nil || len(cp.Sections) == 0 {
		return ""
	}
	var b strings.Builder
	for col := 0; col < width; col++ {
		sec := sectionAt(cp, col, width)
		b.WriteString(gradientStyle(float64(sec.Gradient)).Render("▀"))
	}
	return b.String()
}

// rangeBar marks the selected part of a route of totalKm across width
// columns: "━" inside the selection, "─" outside.
func rangeBar(startKm, endKm, totalKm float64, width int) string {
	var b strings.Builder
	for col := 0; col < width; col++ {
		pos := totalKm
		if width > 1 {
			pos = totalKm * float64(col) / float64(width-1)
		}
		if pos >= startKm && pos <= endKm {
			b.WriteString(selectedRangeStyle.Render("━"))
		} else {
			b.WriteString(outsideRangeStyle.Render("─"))
		}
	}
	return b.String()
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen || targetLen <= 0 {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}
		if end <= start {
			end = start + 1
		}

		sum := 0.0
		for j := start; j < end; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(end-start)
	}

	return result
}
