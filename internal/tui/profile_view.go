package tui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"climbprofile/internal/profile"
	"climbprofile/internal/service"
)

// ProfileModel is the profile screen: summary card and altitude chart
type ProfileModel struct {
	name        string
	prof        *profile.ClimbProfile
	sel         service.Selection
	chartWidth  int
	chartHeight int
}

// NewProfileModel creates a new profile model
func NewProfileModel(chartWidth, chartHeight int) ProfileModel {
	return ProfileModel{chartWidth: chartWidth, chartHeight: chartHeight}
}

// Init initializes the profile screen
func (m ProfileModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m ProfileModel) withProfile(name string, prof *profile.ClimbProfile, sel service.Selection) ProfileModel {
	m.name = name
	m.prof = prof
	m.sel = sel
	return m
}

func (m ProfileModel) withChartSize(width, height int) ProfileModel {
	m.chartWidth = width
	m.chartHeight = height
	return m
}

// View renders the profile screen
func (m ProfileModel) View() string {
	if m.prof == nil {
		return "\n  Building profile..."
	}

	summary := m.renderSummary()
	chart := m.renderChart()

	return lipgloss.JoinVertical(lipgloss.Left, summary, chart)
}

func (m ProfileModel) renderSummary() string {
	title := cardTitleStyle.Render(m.name)
	cp := m.prof

	lines := []string{
		RenderMetric("Distance", humanize.FtoaWithDigits(cp.Distance, 2)+" km"),
		RenderMetric("Highest point", humanize.Comma(int64(math.Round(cp.MaxElevation)))+" m"),
		RenderMetric("Lowest point", humanize.Comma(int64(math.Round(cp.MinElevation)))+" m"),
		RenderMetric("Avg. gradient", fmt.Sprintf("%.1f %%", cp.AverageGradientPercent())),
		RenderMetric("Total climbing", humanize.Comma(int64(math.Round(cp.TotalClimbing)))+" m"),
		RenderMetric("Total downhill", humanize.Comma(int64(math.Round(cp.TotalDescending)))+" m"),
		RenderMetric("Selection", m.sel.String()),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m ProfileModel) renderChart() string {
	caption := fmt.Sprintf("altitude (m) from km %.1f to %.1f", m.prof.Offset, m.prof.Offset+m.prof.Distance)
	chart := plotAltitude(m.prof, m.chartWidth, m.chartHeight, caption)
	if chart == "" {
		return statusStyle.Render("Selection is a single point, nothing to chart")
	}

	pad := lipgloss.NewStyle().PaddingLeft(axisColumn(chart))
	strip := pad.Render(gradientStrip(m.prof, m.chartWidth))
	legend := pad.Render(fmt.Sprintf("%s  %s  %s",
		gradientStyle(0).Render("▀ < 5 %"),
		gradientStyle(5).Render("▀ 5-10 %"),
		gradientStyle(10).Render("▀ > 10 %"),
	))

	return lipgloss.JoinVertical(lipgloss.Left, "", chart, strip, legend)
}
