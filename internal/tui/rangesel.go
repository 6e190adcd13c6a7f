package tui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"climbprofile/internal/profile"
	"climbprofile/internal/service"
)

// RangeModel shows the whole route with the selected part highlighted
type RangeModel struct {
	overview   *profile.ClimbProfile
	sel        service.Selection
	totalKm    float64
	chartWidth int
}

// NewRangeModel creates a new range model
func NewRangeModel(chartWidth int) RangeModel {
	return RangeModel{chartWidth: chartWidth}
}

// Init initializes the range screen
func (m RangeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages. Range keys are handled by the App since they
// change the profile on every screen.
func (m RangeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m RangeModel) withOverview(overview *profile.ClimbProfile, sel service.Selection, totalKm float64) RangeModel {
	m.overview = overview
	m.sel = sel
	m.totalKm = totalKm
	return m
}

func (m RangeModel) withChartWidth(w int) RangeModel {
	m.chartWidth = w
	return m
}

// View renders the minimap
func (m RangeModel) View() string {
	if m.overview == nil {
		return "\n  Building overview..."
	}

	title := cardTitleStyle.Render("Route overview")

	chart := plotAltitude(m.overview, m.chartWidth, 6, fmt.Sprintf("whole route, %.1f km", m.totalKm))
	if chart == "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, "Route is a single point")
	}

	end := math.Min(m.sel.EndKm, m.totalKm)
	pad := lipgloss.NewStyle().PaddingLeft(axisColumn(chart))
	bar := pad.Render(rangeBar(m.sel.StartKm, end, m.totalKm, m.chartWidth))

	info := []string{
		RenderMetric("Start", fmt.Sprintf("%.2f km", m.sel.StartKm)),
		RenderMetric("End", fmt.Sprintf("%.2f km", end)),
		RenderMetric("Length", fmt.Sprintf("%.2f km", end-m.sel.StartKm)),
	}

	help := statusStyle.Render("[ / ] move start, { / } move end, 0 whole route")

	return lipgloss.JoinVertical(lipgloss.Left,
		title, chart, bar, "", lipgloss.JoinVertical(lipgloss.Left, info...), help)
}
