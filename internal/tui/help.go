package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Profile"},
		{"2", "Sections table"},
		{"3", "Range selection"},
		{"4", "Strava routes"},
		{"?", "Help (this screen)"},
		{"esc", "Back / close help"},
		{"q", "Quit"},
	}))

	sections = append(sections, m.renderSection("Profile", []keyHelp{
		{"i", "Next section length"},
		{"x", "Export CSV, PNG chart, PNG map and HTML next to the route"},
	}))

	sections = append(sections, m.renderSection("Range", []keyHelp{
		{"[ / ]", "Move start back / forward"},
		{"{ / }", "Move end back / forward"},
		{"0", "Select the whole route"},
	}))

	sections = append(sections, m.renderSection("Lists", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"enter", "Import the selected Strava route"},
		{"r", "Reload Strava routes"},
	}))

	sections = append(sections, m.renderGradientHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, helpSectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderGradientHelp() string {
	lines := []string{"", helpSectionStyle.Render("Reading the profile"), ""}

	terms := []struct {
		name string
		desc string
	}{
		{"Section", "A fixed-length slice of the selection. The last one may be shorter."},
		{"Gradient", "Net elevation change of a section over its length, in percent."},
		{"Avg. gradient", "Total climbing per 100 km of selection."},
		{"Colours", "Green below 5 %, amber below 10 %, red from 10 %."},
	}

	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name))
		lines = append(lines, "  "+helpDescStyle.Render(t.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
