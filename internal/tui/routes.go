package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"climbprofile/internal/service"
	"climbprofile/internal/strava"
)

// RoutesModel lists the athlete's Strava routes and imports the chosen one
type RoutesModel struct {
	source    service.RouteSource
	routes    []strava.Route
	table     table.Model
	spinner   spinner.Model
	loading   bool
	listing   *routeListing
	fetched   int
	importing string
	err       error
}

var routeColumns = []table.Column{
	{Title: "Name", Width: 32},
	{Title: "Type", Width: 6},
	{Title: "Distance", Width: 10},
	{Title: "Climbing", Width: 10},
}

// NewRoutesModel creates a new routes model. source is nil when Strava is
// not configured.
func NewRoutesModel(source service.RouteSource, height int) RoutesModel {
	t := table.New(
		table.WithColumns(routeColumns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(primaryColor)
	s.Selected = s.Selected.Foreground(textColor).Background(primaryColor)
	t.SetStyles(s)

	return RoutesModel{
		source:  source,
		table:   t,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// routeListing is one background run of service.ListRoutes
type routeListing struct {
	progress chan service.ImportProgress
	done     chan routesLoadedMsg
}

type routesProgressMsg struct {
	listing *routeListing
	fetched int
}

type routesLoadedMsg struct {
	listing *routeListing
	routes  []strava.Route
	err     error
}

// RouteImportedMsg carries a freshly imported route to the App
type RouteImportedMsg struct {
	Service *service.ProfileService
	Err     error
}

// Init does nothing; the list is fetched by startLoading on first visit
func (m RoutesModel) Init() tea.Cmd {
	return nil
}

// listRoutes starts fetching in the background. Progress arrives on
// l.progress, which ListRoutes closes before the result is sent on l.done.
func listRoutes(src service.RouteSource) *routeListing {
	l := &routeListing{
		progress: make(chan service.ImportProgress),
		done:     make(chan routesLoadedMsg, 1),
	}
	go func() {
		routes, err := service.ListRoutes(context.Background(), src, l.progress)
		l.done <- routesLoadedMsg{listing: l, routes: routes, err: err}
	}()
	return l
}

// waitForListing delivers the next progress update, or the result once
// listing has finished
func waitForListing(l *routeListing) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-l.progress; ok {
			return routesProgressMsg{listing: l, fetched: p.Fetched}
		}
		return <-l.done
	}
}

func (m RoutesModel) beginListing() (RoutesModel, tea.Cmd) {
	m.loading = true
	m.fetched = 0
	m.err = nil
	m.listing = listRoutes(m.source)
	return m, tea.Batch(waitForListing(m.listing), m.spinner.Tick)
}

func (m RoutesModel) importRoute(id string) tea.Cmd {
	return func() tea.Msg {
		svc, err := service.Import(context.Background(), m.source, id)
		return RouteImportedMsg{Service: svc, Err: err}
	}
}

// Update handles messages
func (m RoutesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case routesProgressMsg:
		if msg.listing != m.listing {
			return m, nil
		}
		m.fetched = msg.fetched
		return m, waitForListing(msg.listing)

	case routesLoadedMsg:
		if msg.listing != m.listing {
			return m, nil
		}
		m.listing = nil
		m.loading = false
		m.err = msg.err
		m.routes = msg.routes
		if m.routes == nil {
			m.routes = []strava.Route{}
		}
		m.table.SetRows(routeRows(m.routes))
		return m, nil

	case RouteImportedMsg:
		m.importing = ""
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.importing == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.source == nil || m.loading || m.importing != "" {
			return m, nil
		}
		switch msg.String() {
		case "r":
			return m.beginListing()
		case "enter":
			i := m.table.Cursor()
			if i < 0 || i >= len(m.routes) {
				return m, nil
			}
			m.importing = m.routes[i].Name
			m.err = nil
			return m, tea.Batch(m.importRoute(m.routes[i].Key()), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// startLoading fetches the list unless it is loaded or already loading.
// The returned command is nil when nothing was started.
func (m RoutesModel) startLoading() (RoutesModel, tea.Cmd) {
	if m.source == nil || m.routes != nil || m.loading {
		return m, nil
	}
	return m.beginListing()
}

func routeRows(routes []strava.Route) []table.Row {
	rows := make([]table.Row, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, table.Row{
			truncateName(r.Name, 32),
			r.TypeName(),
			humanize.FtoaWithDigits(r.Distance/1000, 1) + " km",
			humanize.Comma(int64(r.ElevationGain)) + " m",
		})
	}
	return rows
}

// View renders the routes list
func (m RoutesModel) View() string {
	title := cardTitleStyle.Render("Strava routes")

	if m.source == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			"Strava is not configured. Add client_id and client_secret to ~/.climb/config.json.")
	}
	if m.loading {
		status := " Loading routes..."
		if m.fetched > 0 {
			status = fmt.Sprintf(" Loading routes... %d fetched", m.fetched)
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, m.spinner.View()+status)
	}
	if m.importing != "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, m.spinner.View()+" Importing "+m.importing+"...")
	}

	var sections []string
	sections = append(sections, title)
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if len(m.routes) == 0 {
		sections = append(sections, "No saved routes. Create one on strava.com and press r.")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.table.View())
	sections = append(sections, statusStyle.Render("enter to import, r to refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
