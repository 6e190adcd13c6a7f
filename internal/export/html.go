package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"climbprofile/internal/profile"
)

// WriteChartHTML writes a standalone page with the altitude profile and a
// gradient bar per section.
func WriteChartHTML(w io.Writer, cp *profile.ClimbProfile, title string) error {
	if len(cp.Sections) == 0 {
		return ErrNoSections
	}

	labels := make([]string, 0, len(cp.Sections))
	altitude := make([]opts.LineData, 0, len(cp.Sections))
	gradient := make([]opts.BarData, 0, len(cp.Sections))
	for _, sec := range cp.Sections {
		labels = append(labels, fmt.Sprintf("%.1f", cp.Offset+sec.End))
		altitude = append(altitude, opts.LineData{Value: round(sec.Altitude, 1)})
		gradient = append(gradient, opts.BarData{
			Value: sec.Gradient,
			ItemStyle: &opts.ItemStyle{
				Color: hexColor(ClassColor(profile.GradientClass(float64(sec.Gradient)))),
			},
		})
	}

	subtitle := fmt.Sprintf("%.1f km, %.0f m climbing, %.1f%% average",
		cp.Distance, cp.TotalClimbing, cp.AverageGradientPercent())

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "km", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Altitude (m)", Min: "dataMin"}),
	)
	line.SetXAxis(labels).
		AddSeries("altitude", altitude,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "260px"}),
		charts.WithTitleOpts(opts.Title{Title: "Gradient per section"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)
	bar.SetXAxis(labels).
		AddSeries("gradient", gradient,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage().SetPageTitle(title)
	page.AddCharts(line, bar)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}
