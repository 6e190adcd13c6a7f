package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"climbprofile/internal/config"
	"climbprofile/internal/export"
	"climbprofile/internal/profile"
	"climbprofile/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenProfile Screen = iota
	ScreenSections
	ScreenRange
	ScreenRoutes
	ScreenHelp
)

// minOverviewInterval keeps the minimap from asking for tiny sections
const minOverviewInterval = 50.0

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	profileView ProfileModel
	sections    SectionsModel
	rangeView   RangeModel
	routes      RoutesModel
	help        HelpModel

	cfg        config.Config
	svc        *service.ProfileService
	exportBase string // output path without extension

	sel      service.Selection
	prof     *profile.ClimbProfile
	overview *profile.ClimbProfile

	// Window dimensions
	width  int
	height int

	// Status message and last build error
	status string
	err    error
}

// NewApp creates a new App. svc may be nil when a route is to be picked
// from Strava; source may be nil when Strava is not configured.
func NewApp(cfg config.Config, svc *service.ProfileService, exportBase string, source service.RouteSource) *App {
	a := &App{
		screen:      ScreenProfile,
		cfg:         cfg,
		svc:         svc,
		exportBase:  exportBase,
		sel:         service.NewSelection(cfg.Profile.IntervalMeters),
		profileView: NewProfileModel(cfg.Display.ChartWidth, cfg.Display.ChartHeight),
		sections:    NewSectionsModel(15),
		rangeView:   NewRangeModel(cfg.Display.ChartWidth),
		routes:      NewRoutesModel(source, 15),
		help:        NewHelpModel(),
	}
	if svc == nil {
		a.screen = ScreenRoutes
	}
	return a
}

// WithSelection starts the app on a sub-route
func (a *App) WithSelection(sel service.Selection) *App {
	a.sel = sel
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	if a.svc == nil {
		var cmd tea.Cmd
		a.routes, cmd = a.routes.startLoading()
		return cmd
	}
	return a.setSelection(a.sel)
}

// profileBuiltMsg carries the result of one rebuild
type profileBuiltMsg struct {
	svc      *service.ProfileService
	sel      service.Selection
	prof     *profile.ClimbProfile
	overview *profile.ClimbProfile
	err      error
}

type exportDoneMsg struct {
	files export.Files
	err   error
}

// build recomputes the profile and the minimap overview for sel
func (a *App) build(sel service.Selection) tea.Cmd {
	svc := a.svc
	if svc == nil {
		return nil
	}
	interval := math.Max(svc.TotalKm()*1000/float64(a.cfg.Display.ChartWidth), minOverviewInterval)

	return func() tea.Msg {
		prof, err := svc.Profile(sel.Params())
		if err != nil {
			return profileBuiltMsg{svc: svc, sel: sel, err: err}
		}
		overview, err := svc.Overview(interval)
		return profileBuiltMsg{svc: svc, sel: sel, prof: prof, overview: overview, err: err}
	}
}

// setSelection clamps sel to the route and rebuilds
func (a *App) setSelection(sel service.Selection) tea.Cmd {
	if a.svc == nil {
		return nil
	}
	a.sel = sel.Clamp(a.svc.TotalKm())
	a.status = ""
	return a.build(a.sel)
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case profileBuiltMsg:
		// drop results for a selection or route that is no longer current
		if msg.svc != a.svc || msg.sel != a.sel {
			return a, nil
		}
		a.err = msg.err
		if msg.err == nil {
			a.prof = msg.prof
			a.overview = msg.overview
			a.refreshScreens()
		}
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.status = fmt.Sprintf("Exported %s, %s, %s, %s",
				msg.files.CSV, msg.files.ChartPNG, msg.files.RoutePNG, msg.files.HTML)
		}
		return a, nil

	case routesProgressMsg, routesLoadedMsg, spinner.TickMsg:
		// the routes list keeps loading while another screen is shown
		m, cmd := a.routes.Update(msg)
		a.routes = m.(RoutesModel)
		return a, cmd

	case RouteImportedMsg:
		var cmd tea.Cmd
		var m tea.Model
		m, cmd = a.routes.Update(msg)
		a.routes = m.(RoutesModel)
		if msg.Err != nil {
			return a, cmd
		}
		a.svc = msg.Service
		a.exportBase = slug(a.svc.Name())
		a.prof, a.overview, a.err = nil, nil, nil
		a.screen = ScreenProfile
		return a, tea.Batch(cmd, a.setSelection(a.sel.Reset()))
	}

	return a, a.delegate(msg)
}

// handleKey runs global bindings. handled is false when the key belongs to
// the current screen.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	total := 0.0
	if a.svc != nil {
		total = a.svc.TotalKm()
	}
	step := a.cfg.Profile.StepKm
	if step <= 0 {
		step = service.DefaultStepKm
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit, true
	case "1":
		a.screen = ScreenProfile
	case "2":
		a.screen = ScreenSections
	case "3":
		a.screen = ScreenRange
	case "4":
		a.screen = ScreenRoutes
		var cmd tea.Cmd
		a.routes, cmd = a.routes.startLoading()
		return cmd, true
	case "?":
		if a.screen != ScreenHelp {
			a.prevScreen = a.screen
			a.screen = ScreenHelp
		}
	case "esc":
		if a.screen == ScreenHelp {
			a.screen = a.prevScreen
		}
	case "i":
		return a.setSelection(a.sel.NextInterval(a.cfg.Profile.IntervalChoices)), true
	case "[":
		return a.setSelection(a.sel.MoveStart(-step, total)), true
	case "]":
		return a.setSelection(a.sel.MoveStart(step, total)), true
	case "{":
		return a.setSelection(a.sel.MoveEnd(-step, total)), true
	case "}":
		return a.setSelection(a.sel.MoveEnd(step, total)), true
	case "0":
		return a.setSelection(a.sel.Reset()), true
	case "x":
		return a.export(), true
	default:
		return nil, false
	}
	return nil, true
}

// delegate passes msg to the current screen
func (a *App) delegate(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenProfile:
		m, cmd = a.profileView.Update(msg)
		a.profileView = m.(ProfileModel)
	case ScreenSections:
		m, cmd = a.sections.Update(msg)
		a.sections = m.(SectionsModel)
	case ScreenRange:
		m, cmd = a.rangeView.Update(msg)
		a.rangeView = m.(RangeModel)
	case ScreenRoutes:
		m, cmd = a.routes.Update(msg)
		a.routes = m.(RoutesModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}
	return cmd
}

func (a *App) refreshScreens() {
	a.profileView = a.profileView.withProfile(a.svc.Name(), a.prof, a.sel)
	a.sections = a.sections.withProfile(a.prof)
	a.rangeView = a.rangeView.withOverview(a.overview, a.sel, a.svc.TotalKm())
}

// resize fits the charts and tables into the window
func (a *App) resize() {
	chartWidth := a.cfg.Display.ChartWidth
	if a.width > 0 && a.width-16 < chartWidth {
		chartWidth = max(a.width-16, 10)
	}
	a.profileView = a.profileView.withChartSize(chartWidth, a.cfg.Display.ChartHeight)
	a.rangeView = a.rangeView.withChartWidth(chartWidth)
	a.sections = a.sections.withHeight(a.height - 10)
}

// export writes every output for the current profile
func (a *App) export() tea.Cmd {
	if a.svc == nil || a.prof == nil {
		return nil
	}
	svc, prof, sel := a.svc, a.prof, a.sel
	files := export.FilesFor(a.exportBase)
	size := export.Size{WidthIn: a.cfg.Display.ExportWidthIn, HeightIn: a.cfg.Display.ExportHeightIn}

	return func() tea.Msg {
		ov, err := svc.Overlay(sel.StartKm, sel.EndKm)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		err = export.WriteAll(files, prof, ov, svc.Name(), size)
		return exportDoneMsg{files: files, err: err}
	}
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenProfile:
		content = a.profileView.View()
	case ScreenSections:
		content = a.sections.View()
	case ScreenRange:
		content = a.rangeView.View()
	case ScreenRoutes:
		content = a.routes.View()
	case ScreenHelp:
		content = a.help.View()
	}
	if a.svc == nil && a.screen != ScreenRoutes && a.screen != ScreenHelp {
		content = "\n  No route loaded. Press 4 to pick a Strava route."
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	title := "Climb"
	if a.svc != nil {
		title += " - " + a.svc.Name()
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Profile", ScreenProfile},
		{"2", "Sections", ScreenSections},
		{"3", "Range", ScreenRange},
		{"4", "Routes", ScreenRoutes},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.err != nil {
		return statusStyle.Render(errorStyle.Render(a.err.Error()))
	}
	if a.status != "" {
		return statusStyle.Render(successStyle.Render(a.status))
	}
	return ""
}
