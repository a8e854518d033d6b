// Package config handles configuration loading for the box-office site.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lightscameradata/boxoffice/internal/chart"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOXOFFICE"

// EnvChartSource replaces the data source of the first configured chart.
const EnvChartSource = EnvPrefix + "_CHART_SOURCE"

// Config represents the complete application configuration.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Charts  []ChartSpec   `mapstructure:"charts"  yaml:"charts"`
	Chart   ChartConfig   `mapstructure:"chart"   yaml:"chart"`
	Data    DataConfig    `mapstructure:"data"    yaml:"data"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SiteConfig holds the page chrome settings.
type SiteConfig struct {
	Title         string `mapstructure:"title"          yaml:"title"`
	Tagline       string `mapstructure:"tagline"        yaml:"tagline"`
	RepositoryURL string `mapstructure:"repository_url" yaml:"repository_url"`
}

// ChartSpec names one chart and the CSV it is drawn from.
type ChartSpec struct {
	Name   string `mapstructure:"name"   yaml:"name"`   // URL slug, e.g. "release_season"
	Title  string `mapstructure:"title"  yaml:"title"`
	Source string `mapstructure:"source" yaml:"source"` // path or http(s) URL
}

// ChartConfig holds the chart geometry and style.
type ChartConfig struct {
	Width            int     `mapstructure:"width"              yaml:"width"`
	Height           int     `mapstructure:"height"             yaml:"height"`
	MarginTop        int     `mapstructure:"margin_top"         yaml:"margin_top"`
	MarginRight      int     `mapstructure:"margin_right"       yaml:"margin_right"`
	MarginBottom     int     `mapstructure:"margin_bottom"      yaml:"margin_bottom"`
	MarginLeft       int     `mapstructure:"margin_left"        yaml:"margin_left"`
	BarFill          string  `mapstructure:"bar_fill"           yaml:"bar_fill"`
	HighlightFill    string  `mapstructure:"highlight_fill"     yaml:"highlight_fill"`
	ErrorStroke      string  `mapstructure:"error_stroke"       yaml:"error_stroke"`
	ErrorStrokeWidth float64 `mapstructure:"error_stroke_width" yaml:"error_stroke_width"`
	ZoomMin          float64 `mapstructure:"zoom_min"           yaml:"zoom_min"`
	ZoomMax          float64 `mapstructure:"zoom_max"           yaml:"zoom_max"`
	TooltipOffset    float64 `mapstructure:"tooltip_offset"     yaml:"tooltip_offset"` // px
}

// DataConfig controls where chart data is read from.
type DataConfig struct {
	BaseURL         string `mapstructure:"base_url"          yaml:"base_url"`          // relative sources are fetched from here when set
	Dir             string `mapstructure:"dir"               yaml:"dir"`               // local directory; empty means the embedded assets
	FetchTimeoutSec int    `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"` // seconds
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// RenderConfig holds settings for the offline render command.
type RenderConfig struct {
	OutputDir   string   `mapstructure:"output_dir"  yaml:"output_dir"`
	Formats     []string `mapstructure:"formats"     yaml:"formats"` // "svg", "png", "jpg", "pdf", "html"
	Concurrency int      `mapstructure:"concurrency" yaml:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.boxoffice/config.yaml (home directory)
//  3. /etc/boxoffice/config.yaml (system)
//
// Environment variables override config file values.
// Format: BOXOFFICE_<SECTION>_<KEY>, e.g., BOXOFFICE_API_PORT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".boxoffice"))
	v.AddConfigPath("/etc/boxoffice")
	bindEnv(v)

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Site defaults
	v.SetDefault("site.title", "Lights, Camera, Data!")
	v.SetDefault("site.tagline", "Lights, Camera, Data")
	v.SetDefault("site.repository_url", "https://github.com/epfl-ada/ada-2024-project-awesometeam2024.git")

	v.SetDefault("charts", []map[string]any{
		{
			"name":   "release_season",
			"title":  "Mean box office revenue by release season",
			"source": "plots_data/chart_release_season.csv",
		},
	})

	// Chart defaults mirror chart.DefaultConfig
	d := chart.DefaultConfig()
	v.SetDefault("chart.width", d.Width)
	v.SetDefault("chart.height", d.Height)
	v.SetDefault("chart.margin_top", d.MarginTop)
	v.SetDefault("chart.margin_right", d.MarginRight)
	v.SetDefault("chart.margin_bottom", d.MarginBottom)
	v.SetDefault("chart.margin_left", d.MarginLeft)
	v.SetDefault("chart.bar_fill", d.BarFill)
	v.SetDefault("chart.highlight_fill", d.HighlightFill)
	v.SetDefault("chart.error_stroke", d.ErrorStroke)
	v.SetDefault("chart.error_stroke_width", d.ErrorStrokeWidth)
	v.SetDefault("chart.zoom_min", d.ScaleMin)
	v.SetDefault("chart.zoom_max", d.ScaleMax)
	v.SetDefault("chart.tooltip_offset", d.TooltipOffset)

	// Data defaults
	v.SetDefault("data.base_url", "")
	v.SetDefault("data.dir", "")
	v.SetDefault("data.fetch_timeout_sec", 15)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Render defaults
	v.SetDefault("render.output_dir", "out")
	v.SetDefault("render.formats", []string{"svg", "png", "html"})
	v.SetDefault("render.concurrency", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv applies overrides viper cannot express for list sections.
func overrideFromEnv(cfg *Config) {
	if src := os.Getenv(EnvChartSource); src != "" && len(cfg.Charts) > 0 {
		cfg.Charts[0].Source = src
	}
}

// Validate rejects settings the server or renderer cannot run with.
func (c *Config) Validate() error {
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Render.Concurrency < 0 {
		return fmt.Errorf("render.concurrency must not be negative, got %d", c.Render.Concurrency)
	}
	// Zero means the default; zooming out below identity is never allowed.
	if c.Chart.ZoomMin < 0 || (c.Chart.ZoomMin != 0 && c.Chart.ZoomMin < 1) {
		return fmt.Errorf("chart.zoom_min must be at least 1, got %g", c.Chart.ZoomMin)
	}
	if c.Chart.ZoomMax != 0 && c.Chart.ZoomMax < math.Max(c.Chart.ZoomMin, 1) {
		return fmt.Errorf("chart zoom extent [%g, %g] is invalid", c.Chart.ZoomMin, c.Chart.ZoomMax)
	}
	seen := make(map[string]bool, len(c.Charts))
	for i, ch := range c.Charts {
		if ch.Name == "" || ch.Source == "" {
			return fmt.Errorf("charts[%d]: name and source are required", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("charts[%d]: duplicate chart name %q", i, ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

// FindChart returns the chart with the given name.
func (c *Config) FindChart(name string) (ChartSpec, bool) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, true
		}
	}
	return ChartSpec{}, false
}

// Options converts the chart section into renderer options.
func (c ChartConfig) Options(title string) chart.Config {
	return chart.Config{
		Width:            c.Width,
		Height:           c.Height,
		MarginTop:        c.MarginTop,
		MarginRight:      c.MarginRight,
		MarginBottom:     c.MarginBottom,
		MarginLeft:       c.MarginLeft,
		Title:            title,
		BarFill:          c.BarFill,
		HighlightFill:    c.HighlightFill,
		ErrorStroke:      c.ErrorStroke,
		ErrorStrokeWidth: c.ErrorStrokeWidth,
		ScaleMin:         c.ZoomMin,
		ScaleMax:         c.ZoomMax,
		TooltipOffset:    c.TooltipOffset,
	}
}

// FetchTimeout returns the per-load timeout.
func (d DataConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSec) * time.Second
}

// Resolve turns a chart source into the location the loader should read.
// Absolute URLs pass through; relative sources are joined to BaseURL when set.
func (d DataConfig) Resolve(source string) string {
	if isURL(source) || d.BaseURL == "" {
		return source
	}
	return strings.TrimRight(d.BaseURL, "/") + "/" + strings.TrimLeft(source, "/")
}

// Addr returns the listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
