// Package config loads folio's YAML configuration and builds its logger.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/paginate"
)

// DefaultFile is the configuration file looked up in the working directory
// when no --config flag is given.
const DefaultFile = "folio.yaml"

// Reader defaults, matching a phone-sized browser viewport.
const (
	DefaultViewportWidth  = 390.0
	DefaultViewportHeight = 844.0
	DefaultChrome         = 52.0 // bottom bar height in px
	DefaultMinFontSize    = 12.0
	DefaultMaxFontSize    = 24.0
	DefaultFontStep       = 2.0
	DefaultSwipeThreshold = 40.0
)

// Validation errors.
var (
	ErrInvalidFontRange = errors.New("font range must satisfy 0 < min <= max and step > 0")
	ErrInvalidViewport  = errors.New("viewport must be larger than the chrome")
	ErrInvalidStyle     = errors.New("style must have a positive font size and width")
)

// Viewport is the size of the reading surface in px.
type Viewport struct {
	Width  float64 `yaml:"width"  json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// FontRange bounds the font sizes the reader may switch between.
type FontRange struct {
	Min  float64 `yaml:"min"  json:"min"`
	Max  float64 `yaml:"max"  json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// Clamp limits px to the range.
func (r FontRange) Clamp(px float64) float64 {
	if px < r.Min {
		return r.Min
	}
	if px > r.Max {
		return r.Max
	}
	return px
}

// LoggingConfig controls log verbosity and an optional log file.
type LoggingConfig struct {
	Level string `yaml:"level"          json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Config is the full configuration. Fields absent from the YAML file keep
// their defaults.
type Config struct {
	Viewport Viewport `yaml:"viewport" json:"viewport"`
	// Chrome is the height reserved below the page for the status bar.
	Chrome float64      `yaml:"chrome" json:"chrome"`
	Style  layout.Style `yaml:"style"  json:"style"`
	// Declarations are CSS-like style declarations applied on top of Style,
	// e.g. "font-size: 18px; line-height: 1.6".
	Declarations   string        `yaml:"declarations,omitempty" json:"declarations,omitempty"`
	FontRange      FontRange     `yaml:"font-range"             json:"fontRange"`
	SwipeThreshold float64       `yaml:"swipe-threshold"        json:"swipeThreshold"`
	CacheEntries   int           `yaml:"cache-entries"          json:"cacheEntries"`
	Source         string        `yaml:"source,omitempty"       json:"source,omitempty"`
	Logging        LoggingConfig `yaml:"logging"                json:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Viewport:       Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		Chrome:         DefaultChrome,
		Style:          layout.DefaultStyle(),
		FontRange:      FontRange{Min: DefaultMinFontSize, Max: DefaultMaxFontSize, Step: DefaultFontStep},
		SwipeThreshold: DefaultSwipeThreshold,
		CacheEntries:   paginate.DefaultCacheEntries,
		Logging:        LoggingConfig{Level: "info"},
	}
}

// Load reads path on top of the defaults. An empty path tries DefaultFile and
// silently falls back to the defaults when it does not exist; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data onto cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("nil *Config in Parse")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the ranges the reader relies on.
func (c *Config) Validate() error {
	r := c.FontRange
	if r.Min <= 0 || r.Max < r.Min || r.Step <= 0 {
		return fmt.Errorf("%w: got min=%g max=%g step=%g", ErrInvalidFontRange, r.Min, r.Max, r.Step)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= c.Chrome || c.Chrome < 0 {
		return fmt.Errorf("%w: got %gx%g with chrome %g", ErrInvalidViewport, c.Viewport.Width, c.Viewport.Height, c.Chrome)
	}
	if c.Style.FontSize <= 0 {
		return fmt.Errorf("%w: font size %g", ErrInvalidStyle, c.Style.FontSize)
	}
	return nil
}

// ResolveStyle returns Style with Declarations applied, its font size clamped
// into FontRange and its width taken from the viewport when unset.
func (c *Config) ResolveStyle() (layout.Style, error) {
	style := c.Style
	if style.Width <= 0 {
		style.Width = c.Viewport.Width
	}
	if c.Declarations != "" {
		var err error
		style, err = layout.ParseStyle(c.Declarations, style)
		if err != nil {
			return c.Style, fmt.Errorf("applying style declarations: %w", err)
		}
	}
	style.FontSize = c.FontRange.Clamp(style.FontSize)
	return style, nil
}

// Capacity is the page height available above the chrome.
func (c *Config) Capacity() int {
	h := int(c.Viewport.Height - c.Chrome)
	if h < 0 {
		return 0
	}
	return h
}
