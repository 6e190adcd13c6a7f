package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"climbprofile/internal/profile"
)

// SectionsModel is the scrollable section table
type SectionsModel struct {
	table table.Model
	prof  *profile.ClimbProfile
}

var sectionColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "From km", Width: 8},
	{Title: "To km", Width: 8},
	{Title: "Altitude", Width: 9},
	{Title: "Delta", Width: 7},
	{Title: "Gradient", Width: 9},
	{Title: "Class", Width: 9},
}

// NewSectionsModel creates a new sections model
func NewSectionsModel(height int) SectionsModel {
	t := table.New(
		table.WithColumns(sectionColumns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true).
		Foreground(primaryColor)
	s.Selected = s.Selected.
		Foreground(textColor).
		Background(primaryColor).
		Bold(true)
	t.SetStyles(s)

	return SectionsModel{table: t}
}

// Init initializes the sections screen
func (m SectionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m SectionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SectionsModel) withProfile(prof *profile.ClimbProfile) SectionsModel {
	m.prof = prof
	m.table.SetRows(sectionRows(prof))
	if m.table.Cursor() >= len(prof.Sections) {
		m.table.GotoTop()
	}
	return m
}

func (m SectionsModel) withHeight(h int) SectionsModel {
	if h > 3 {
		m.table.SetHeight(h)
	}
	return m
}

// sectionRows formats one row per section, positions in km of the full route
func sectionRows(prof *profile.ClimbProfile) []table.Row {
	rows := make([]table.Row, 0, len(prof.Sections))
	for _, sec := range prof.Sections {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", sec.Index+1),
			fmt.Sprintf("%.2f", prof.Offset+sec.Start),
			fmt.Sprintf("%.2f", prof.Offset+sec.End),
			fmt.Sprintf("%.0f m", sec.Altitude),
			fmt.Sprintf("%+.0f m", sec.Delta),
			fmt.Sprintf("%d %%", sec.Gradient),
			profile.GradientClass(float64(sec.Gradient)).String(),
		})
	}
	return rows
}

// View renders the section table
func (m SectionsModel) View() string {
	if m.prof == nil {
		return "\n  Building profile..."
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Sections (%d)", len(m.prof.Sections)))
	help := statusStyle.Render("j/k or arrows to scroll, pgup/pgdn to page")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View(), help)
}
