package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava"`
	Profile ProfileConfig `json:"profile"`
	Display DisplayConfig `json:"display"`
}

// StravaConfig holds Strava API credentials, only needed for route import
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// ProfileConfig holds the default profile parameters
type ProfileConfig struct {
	IntervalMeters  float64   `json:"interval_meters"`
	IntervalChoices []float64 `json:"interval_choices"`
	StepKm          float64   `json:"step_km"` // how far [ and ] move the range
}

// DisplayConfig holds chart and export sizes
type DisplayConfig struct {
	ChartHeight    int     `json:"chart_height"`
	ChartWidth     int     `json:"chart_width"`
	ExportWidthIn  float64 `json:"export_width_in"`
	ExportHeightIn float64 `json:"export_height_in"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

const (
	placeholderClientID     = "YOUR_CLIENT_ID"
	placeholderClientSecret = "YOUR_CLIENT_SECRET"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Profile: ProfileConfig{
			IntervalMeters:  500,
			IntervalChoices: []float64{100, 250, 500, 1000},
			StepKm:          0.5,
		},
		Display: DisplayConfig{
			ChartHeight:    10,
			ChartWidth:     60,
			ExportWidthIn:  10,
			ExportHeightIn: 4,
		},
	}
}

// Load reads the configuration from ~/.climb/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path and fills in defaults for
// missing values
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Profile.IntervalMeters == 0 {
		c.Profile.IntervalMeters = defaults.Profile.IntervalMeters
	}
	if len(c.Profile.IntervalChoices) == 0 {
		c.Profile.IntervalChoices = defaults.Profile.IntervalChoices
	}
	if c.Profile.StepKm == 0 {
		c.Profile.StepKm = defaults.Profile.StepKm
	}
	if c.Display.ChartHeight == 0 {
		c.Display.ChartHeight = defaults.Display.ChartHeight
	}
	if c.Display.ChartWidth == 0 {
		c.Display.ChartWidth = defaults.Display.ChartWidth
	}
	if c.Display.ExportWidthIn == 0 {
		c.Display.ExportWidthIn = defaults.Display.ExportWidthIn
	}
	if c.Display.ExportHeightIn == 0 {
		c.Display.ExportHeightIn = defaults.Display.ExportHeightIn
	}
}

// Save writes the configuration to ~/.climb/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path, creating its directory
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     placeholderClientID,
		ClientSecret: placeholderClientSecret,
	}

	return SaveFile(path, &example)
}

// Validate checks the profile and display settings
func (c *Config) Validate() error {
	if c.Profile.IntervalMeters <= 0 {
		return fmt.Errorf("profile.interval_meters must be positive, got %v", c.Profile.IntervalMeters)
	}
	for _, v := range c.Profile.IntervalChoices {
		if v <= 0 {
			return fmt.Errorf("profile.interval_choices must all be positive, got %v", v)
		}
	}
	if c.Profile.StepKm <= 0 {
		return fmt.Errorf("profile.step_km must be positive, got %v", c.Profile.StepKm)
	}

	if c.Display.ChartHeight < 3 {
		return fmt.Errorf("display.chart_height must be at least 3, got %d", c.Display.ChartHeight)
	}
	if c.Display.ChartWidth < 10 {
		return fmt.Errorf("display.chart_width must be at least 10, got %d", c.Display.ChartWidth)
	}
	if c.Display.ExportWidthIn <= 0 || c.Display.ExportHeightIn <= 0 {
		return errors.New("display.export_width_in and display.export_height_in must be positive")
	}

	return nil
}

// StravaEnabled reports whether real Strava credentials are configured
func (c *Config) StravaEnabled() bool {
	return c.ValidateStrava() == nil
}

// ValidateStrava checks that the Strava credentials are filled in
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == placeholderClientID {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == placeholderClientSecret {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".climb"), nil
}
