package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"

	"climbprofile/internal/auth"
	"climbprofile/internal/config"
	"climbprofile/internal/export"
	"climbprofile/internal/profile"
	"climbprofile/internal/service"
	"climbprofile/internal/store"
	"climbprofile/internal/strava"
	"climbprofile/internal/tui"
)

type options struct {
	start       float64
	end         float64
	interval    float64
	csvPath     string
	pngPath     string
	mapPath     string
	htmlPath    string
	print       bool
	stravaRoute string
	strava      bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("climb: ")

	opts := parseFlags()
	if err := run(opts, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var o options
	flag.Float64Var(&o.start, "start", 0, "start of the selection in km")
	flag.Float64Var(&o.end, "end", -1, "end of the selection in km (negative for the end of the route)")
	flag.Float64Var(&o.interval, "interval", 0, "section length in meters (default from config, 500)")
	flag.StringVar(&o.csvPath, "csv", "", "write the section table as CSV to `file`")
	flag.StringVar(&o.pngPath, "png", "", "write the profile chart as PNG to `file`")
	flag.StringVar(&o.mapPath, "map", "", "write the gradient coloured route as PNG to `file`")
	flag.StringVar(&o.htmlPath, "html", "", "write an interactive HTML chart to `file`")
	flag.BoolVar(&o.print, "print", false, "print the summary and sections instead of starting the UI")
	flag.StringVar(&o.stravaRoute, "strava-route", "", "import the Strava route with this `id` instead of a file")
	flag.BoolVar(&o.strava, "strava", false, "start on the Strava routes list")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: climb [flags] route.gpx\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	return o
}

// batch reports whether outputs were requested instead of the UI
func (o options) batch() bool {
	return o.print || o.csvPath != "" || o.pngPath != "" || o.mapPath != "" || o.htmlPath != ""
}

func run(o options, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if o.interval > 0 {
		cfg.Profile.IntervalMeters = o.interval
	}

	// Strava is optional: only log in when asked to, otherwise reuse a stored token
	var client *strava.Client
	login := o.strava || o.stravaRoute != ""
	if login || (cfg.StravaEnabled() && !o.batch()) {
		if err := checkStravaConfig(cfg); err != nil {
			return err
		}

		db, err := store.Open()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		client, err = connectStrava(ctx, cfg, db, login)
		switch {
		case err == nil:
		case login:
			return err
		case !errors.Is(err, store.ErrNoAuth):
			log.Printf("Strava routes unavailable: %v", err)
		}
	}

	var svc *service.ProfileService
	var base string
	switch {
	case o.stravaRoute != "":
		fmt.Printf("Importing Strava route %s...\n", o.stravaRoute)
		svc, err = service.Import(ctx, client, o.stravaRoute)
		base = "strava-" + o.stravaRoute
	case len(args) == 1:
		svc, err = service.Open(args[0])
		base = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	case len(args) == 0 && o.strava && !o.batch():
		// pick a route in the UI
	default:
		flag.Usage()
		return errors.New("expected exactly one GPX file")
	}
	if err != nil {
		return err
	}

	sel := service.Selection{StartKm: o.start, EndKm: profile.ToEnd, IntervalMeters: cfg.Profile.IntervalMeters}
	if o.end >= 0 {
		sel.EndKm = o.end
	}

	if o.batch() {
		return writeOutputs(os.Stdout, svc, sel, o, cfg)
	}

	var source service.RouteSource
	if client != nil {
		source = client
	}
	app := tui.NewApp(*cfg, svc, base, source).WithSelection(sel)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// loadConfig reads ~/.climb/config.json, falling back to defaults when the
// file does not exist yet
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		def := config.DefaultConfig()
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config %s/config.json: %w", configDir, err)
	}
	return cfg, nil
}

// writeOutputs builds the profile once and writes every requested output
func writeOutputs(w io.Writer, svc *service.ProfileService, sel service.Selection, o options, cfg *config.Config) error {
	cp, err := svc.Profile(sel.Params())
	if err != nil {
		return err
	}
	size := export.Size{WidthIn: cfg.Display.ExportWidthIn, HeightIn: cfg.Display.ExportHeightIn}

	if o.csvPath != "" {
		if err := export.WriteFile(o.csvPath, func(w io.Writer) error { return export.WriteCSV(w, cp) }); err != nil {
			return err
		}
	}
	if o.pngPath != "" {
		if err := export.WriteFile(o.pngPath, func(w io.Writer) error { return export.WriteChartPNG(w, cp, svc.Name(), size) }); err != nil {
			return err
		}
	}
	if o.mapPath != "" {
		ov, err := svc.Overlay(sel.StartKm, sel.EndKm)
		if err != nil {
			return err
		}
		if err := export.WriteFile(o.mapPath, func(w io.Writer) error { return export.WriteRoutePNG(w, ov, svc.Name(), size) }); err != nil {
			return err
		}
	}
	if o.htmlPath != "" {
		if err := export.WriteFile(o.htmlPath, func(w io.Writer) error { return export.WriteChartHTML(w, cp, svc.Name()) }); err != nil {
			return err
		}
	}

	if o.print {
		printProfile(w, svc.Name(), cp)
	}
	return nil
}

func printProfile(w io.Writer, name string, cp *profile.ClimbProfile) {
	fmt.Fprintln(w, name)
	fmt.Fprintf(w, "  Distance        %s km\n", humanize.FtoaWithDigits(cp.Distance, 2))
	fmt.Fprintf(w, "  Highest point   %s m\n", humanize.Comma(int64(math.Round(cp.MaxElevation))))
	fmt.Fprintf(w, "  Lowest point    %s m\n", humanize.Comma(int64(math.Round(cp.MinElevation))))
	fmt.Fprintf(w, "  Avg. gradient   %.1f %%\n", cp.AverageGradientPercent())
	fmt.Fprintf(w, "  Total climbing  %s m\n", humanize.Comma(int64(math.Round(cp.TotalClimbing))))
	fmt.Fprintf(w, "  Total downhill  %s m\n", humanize.Comma(int64(math.Round(cp.TotalDescending))))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %4s  %8s  %8s  %8s  %7s  %8s\n", "#", "from km", "to km", "altitude", "delta", "gradient")
	for _, sec := range cp.Sections {
		fmt.Fprintf(w, "  %4d  %8.2f  %8.2f  %6.0f m  %+5.0f m  %6d %%\n",
			sec.Index+1, cp.Offset+sec.Start, cp.Offset+sec.End, sec.Altitude, sec.Delta, sec.Gradient)
	}
}

// checkStravaConfig makes sure credentials are configured, writing an
// example config to fill in when they are not
func checkStravaConfig(cfg *config.Config) error {
	err := cfg.ValidateStrava()
	if err == nil {
		return nil
	}
	if err := config.CreateExample(); err != nil {
		return fmt.Errorf("creating example config: %w", err)
	}
	configDir, _ := config.GetConfigDir()
	return fmt.Errorf("%w\nadd your credentials to %s/config.json", err, configDir)
}

// connectStrava returns an API client with a working token. With login set
// the OAuth flow runs when no token is stored or the stored one is rejected;
// without it store.ErrNoAuth is returned instead. db stays owned by the
// caller and must outlive the client, which saves refreshed tokens to it.
func connectStrava(ctx context.Context, cfg *config.Config, db *store.DB, login bool) (*strava.Client, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	storedAuth, err := db.GetAuth(oauthCfg.ClientID)
	if errors.Is(err, store.ErrNoAuth) && login {
		fmt.Println("No Strava authorization found. Starting OAuth flow...")
		storedAuth, err = authenticate(ctx, db, oauthCfg)
	}
	if err != nil {
		return nil, err
	}

	tokenSource := auth.NewTokenSource(ctx, oauthCfg, auth.TokenFromStore(storedAuth), auth.PersistTo(db, oauthCfg.ClientID))

	// Make sure the stored token still works before starting
	if _, err := tokenSource.Token(); err != nil {
		if !login {
			return nil, fmt.Errorf("refreshing Strava token (run with -strava to log in again): %w", err)
		}
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		storedAuth, err = authenticate(ctx, db, oauthCfg)
		if err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		tokenSource = auth.NewTokenSource(ctx, oauthCfg, auth.TokenFromStore(storedAuth), auth.PersistTo(db, oauthCfg.ClientID))
	}

	return strava.NewClient(ctx, tokenSource), nil
}

func authenticate(ctx context.Context, db *store.DB, oauthCfg *oauth2.Config) (*store.Auth, error) {
	result, err := auth.Authenticate(ctx, oauthCfg, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}

	storedAuth := result.ToStore(oauthCfg.ClientID)
	if err := db.SaveAuth(storedAuth); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return storedAuth, nil
}
