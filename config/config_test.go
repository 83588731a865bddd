package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "inkbridge.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0600))
	return p
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ink.NewRect(0, 0, 2048, 2732), cfg.Canvas.Rect())
	assert.Equal(t, ":8080", cfg.Server.Address())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ink.DefaultMaxDimension, cfg.Export.MaxDimension)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TEST_BACKEND_HOST", "vision.local")
	p := writeConfig(t, `
canvas:
  width: 1024
  height: 768
export:
  max_dimension: 1600
  ink: "#1a237e"
  grayscale: false
backend:
  url: https://${TEST_BACKEND_HOST}/v1/describe
  mode: json
  timeout: 5s
server:
  port: 9090
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 1024.0, cfg.Canvas.Width)
	assert.Equal(t, 1600.0, cfg.Export.MaxDimension)
	assert.Equal(t, ink.DefaultMargin, cfg.Export.Margin, "unset keys keep defaults")
	assert.Equal(t, "https://vision.local/v1/describe", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)

	ec := cfg.Export.Exporter()
	assert.Equal(t, color.NRGBA{R: 0x1a, G: 0x23, B: 0x7e, A: 0xff}, ec.Render.Ink)
	assert.False(t, ec.Render.Grayscale)

	cl := cfg.Backend.Client()
	assert.Equal(t, transport.ModeJSON, cl.Mode)
	assert.Equal(t, 5*time.Second, cl.HTTPClient.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://localhost:9000")
	t.Setenv(EnvBackendToken, "tok")
	t.Setenv(EnvBackendHMAC, "app:secret")
	t.Setenv(EnvMaxDimension, "2048")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.URL)
	assert.Equal(t, "tok", cfg.Backend.Token)
	assert.Equal(t, "app", cfg.Backend.HMACKey)
	assert.Equal(t, "secret", cfg.Backend.HMACSecret)
	assert.Equal(t, 2048.0, cfg.Export.MaxDimension)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv(EnvMaxDimension, "large")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv(EnvMaxDimension, "")
	t.Setenv(EnvBackendHMAC, "nocolon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "canvas: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  port: 70000\n"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero canvas":     func(c *Config) { c.Canvas.Width = 0 },
		"negative margin": func(c *Config) { c.Export.Margin = -1 },
		"bad ink":         func(c *Config) { c.Export.Ink = "black" },
		"bad mode":        func(c *Config) { c.Backend.Mode = "grpc" },
		"bad url":         func(c *Config) { c.Backend.URL = "ftp://x" },
		"secret only":     func(c *Config) { c.Backend.HMACSecret = "s" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEmptyModeDefaultsMultipart(t *testing.T) {
	cfg := BackendConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeMultipart, cfg.Mode)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c)

	c, err = ParseColor("ff000080")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 0x80}, c)

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
