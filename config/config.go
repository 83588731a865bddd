// Package config loads the inkbridge YAML configuration.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/transport"
	"github.com/inkbridge/inkbridge/visualize"
)

// Environment overrides, applied after the file is read.
const (
	EnvBackendURL   = "INKBRIDGE_BACKEND_URL"
	EnvBackendToken = "INKBRIDGE_BACKEND_TOKEN"
	EnvBackendHMAC  = "INKBRIDGE_BACKEND_HMAC"
	EnvMaxDimension = "INKBRIDGE_MAX_DIMENSION"
)

// Config represents the application configuration.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Export  ExportConfig  `yaml:"export"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Canvas.Validate(); err != nil {
		return errors.Wrap(err, "canvas")
	}
	if err := c.Export.Validate(); err != nil {
		return errors.Wrap(err, "export")
	}
	if err := c.Backend.Validate(); err != nil {
		return errors.Wrap(err, "backend")
	}
	if err := c.Server.Validate(); err != nil {
		return errors.Wrap(err, "server")
	}
	return nil
}

// CanvasConfig is the drawing surface extent in canvas units.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect returns the canvas extent anchored at the origin.
func (c *CanvasConfig) Rect() ink.Rect {
	return ink.NewRect(0, 0, c.Width, c.Height)
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(1.0)),
	)
}

// ExportConfig controls the export pipeline.
type ExportConfig struct {
	MaxDimension float64 `yaml:"max_dimension"`
	Margin       float64 `yaml:"margin"`
	MinDimension float64 `yaml:"min_dimension"`
	LineWidth    float64 `yaml:"line_width"`
	Ink          string  `yaml:"ink"`
	Background   string  `yaml:"background"`
	Grayscale    bool    `yaml:"grayscale"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxDimension, validation.Min(0.0)),
		validation.Field(&c.Margin, validation.Min(0.0)),
		validation.Field(&c.MinDimension, validation.Min(0.0)),
		validation.Field(&c.LineWidth, validation.Required, validation.Min(0.1)),
		validation.Field(&c.Ink, validation.Required, validation.By(validHex)),
		validation.Field(&c.Background, validation.Required, validation.By(validHex)),
	)
}

// Exporter returns the pipeline configuration. Colors were checked by
// Validate; unparsable values fall back to the renderer defaults.
func (c *ExportConfig) Exporter() export.Config {
	opts := visualize.DefaultOptions()
	opts.LineWidth = c.LineWidth
	opts.Grayscale = c.Grayscale
	if fg, err := ParseColor(c.Ink); err == nil {
		opts.Ink = fg
	}
	if bg, err := ParseColor(c.Background); err == nil {
		opts.Background = bg
	}
	return export.Config{
		Margin:       c.Margin,
		MinDimension: c.MinDimension,
		Render:       opts,
	}
}

// Backend modes.
const (
	ModeMultipart = string(transport.ModeMultipart)
	ModeJSON      = string(transport.ModeJSON)
)

// BackendConfig describes the vision backend.
type BackendConfig struct {
	URL        string        `yaml:"url"`
	Token      string        `yaml:"token"`
	HMACKey    string        `yaml:"hmac_key"`
	HMACSecret string        `yaml:"hmac_secret"`
	Mode       string        `yaml:"mode"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the backend configuration. An empty URL is allowed;
// submitting is then refused at send time.
func (c *BackendConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ModeMultipart
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(ModeMultipart, ModeJSON)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.URL != "" && !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("url %q is not an http(s) url", c.URL)
	}
	if c.HMACSecret != "" && c.HMACKey == "" {
		return errors.New("hmac_secret is set but hmac_key is empty")
	}
	return nil
}

// Client builds a transport client for the backend.
func (c *BackendConfig) Client() *transport.Client {
	cl := transport.NewClient(c.URL, c.Token)
	cl.HMACKey = c.HMACKey
	cl.HMACSecret = c.HMACSecret
	if c.Mode != "" {
		cl.Mode = transport.Mode(c.Mode)
	}
	if c.Timeout > 0 {
		cl.HTTPClient.Timeout = c.Timeout
	}
	return cl
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a Config with the default tablet canvas and
// export limits.
func NewDefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  2048,
			Height: 2732,
		},
		Export: ExportConfig{
			MaxDimension: ink.DefaultMaxDimension,
			Margin:       ink.DefaultMargin,
			MinDimension: ink.DefaultMinDimension,
			LineWidth:    3,
			Ink:          "#000000",
			Background:   "#ffffff",
			Grayscale:    true,
		},
		Backend: BackendConfig{
			Mode:    ModeMultipart,
			Timeout: 60 * time.Second,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads filename over the defaults, expands ${VAR} references,
// applies the environment overrides and validates the result. An empty
// filename yields the defaults plus overrides.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", filename)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", filename)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvBackendToken); v != "" {
		c.Backend.Token = v
	}
	if v := os.Getenv(EnvBackendHMAC); v != "" {
		key, secret, ok := strings.Cut(v, ":")
		if !ok {
			return fmt.Errorf("%s must be key:secret", EnvBackendHMAC)
		}
		c.Backend.HMACKey, c.Backend.HMACSecret = key, secret
	}
	if v := os.Getenv(EnvMaxDimension); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvMaxDimension)
		}
		c.Export.MaxDimension = limit
	}
	return nil
}

func validHex(value interface{}) error {
	s, _ := value.(string)
	_, err := ParseColor(s)
	return err
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
