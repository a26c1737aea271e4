// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config provides configuration management for castdisplay using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gogpu/remotedisplay/playback"
	"github.com/gogpu/remotedisplay/surface"
)

// EnvPrefix prefixes every environment variable, e.g. CASTDISPLAY_SERVER_ADDR.
const EnvPrefix = "CASTDISPLAY"

// Default configuration values.
const (
	defaultServerAddr      = "127.0.0.1:7878"
	defaultShutdownTimeout = 5 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultTitle           = "remote display"
	defaultFontSize        = 32
	defaultJournalDSN      = "castdisplay.db"
	defaultJPEGQuality     = 80
)

// Config holds all configuration for the application.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Display  DisplayConfig  `mapstructure:"display"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Surface  SurfaceConfig  `mapstructure:"surface"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// ServerConfig holds the control API and cast sink listener configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	JPEGQuality     int           `mapstructure:"jpeg_quality"`
}

// DisplayConfig holds local X11 display discovery configuration.
type DisplayConfig struct {
	X11          bool          `mapstructure:"x11"`
	X11Display   string        `mapstructure:"x11_display"` // empty uses $DISPLAY
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Primary      string        `mapstructure:"primary"` // output kept for the local desktop
}

// ProfileConfig is the framebuffer request negotiated for every display.
type ProfileConfig struct {
	Red     uint `mapstructure:"red"`
	Green   uint `mapstructure:"green"`
	Blue    uint `mapstructure:"blue"`
	Alpha   uint `mapstructure:"alpha"`
	Depth   uint `mapstructure:"depth"`
	Stencil uint `mapstructure:"stencil"`
	Samples uint `mapstructure:"samples"` // 0 disables multisampling
}

// SurfaceConfig selects the capability provider.
type SurfaceConfig struct {
	Backend string `mapstructure:"backend"` // auto, wgpu, software
}

// RendererConfig holds the content renderer configuration.
type RendererConfig struct {
	Title    string  `mapstructure:"title"`
	Font     string  `mapstructure:"font"` // path to a TTF/OTF file, empty for Go Regular
	FontSize float64 `mapstructure:"font_size"`
	Speed    float64 `mapstructure:"speed"`
}

// AudioConfig holds the session audio configuration.
type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Volume     float64 `mapstructure:"volume"`
	Frequency  float64 `mapstructure:"frequency"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// JournalConfig holds the session history database configuration.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("server.addr", defaultServerAddr)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.jpeg_quality", defaultJPEGQuality)

	v.SetDefault("display.x11", false)
	v.SetDefault("display.x11_display", "")
	v.SetDefault("display.poll_interval", defaultPollInterval)
	v.SetDefault("display.primary", "")

	v.SetDefault("profile.red", 8)
	v.SetDefault("profile.green", 8)
	v.SetDefault("profile.blue", 8)
	v.SetDefault("profile.alpha", 8)
	v.SetDefault("profile.depth", 16)
	v.SetDefault("profile.stencil", 0)
	v.SetDefault("profile.samples", 4)

	v.SetDefault("surface.backend", "auto")

	v.SetDefault("renderer.title", defaultTitle)
	v.SetDefault("renderer.font", "")
	v.SetDefault("renderer.font_size", defaultFontSize)
	v.SetDefault("renderer.speed", 0.02)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", playback.DefaultVolume)
	v.SetDefault("audio.frequency", playback.DefaultFrequency)
	v.SetDefault("audio.sample_rate", playback.DefaultSampleRate)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.dsn", defaultJournalDSN)
}

// Configure sets up v to read the config file at path, or search for
// .castdisplay.yaml in the home and working directories when path is
// empty, and to read CASTDISPLAY_ environment variables.
func Configure(v *viper.Viper, path string) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".castdisplay")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Read reads the config file configured on v. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.JPEGQuality < 1 || c.Server.JPEGQuality > 100 {
		return fmt.Errorf("server.jpeg_quality must be between 1 and 100")
	}

	if c.Display.X11 && c.Display.PollInterval <= 0 {
		return fmt.Errorf("display.poll_interval must be positive")
	}

	if err := c.Profile.Request().Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	validBackends := map[string]bool{"auto": true, surface.WGPUName: true, surface.SoftwareName: true}
	if !validBackends[c.Surface.Backend] {
		return fmt.Errorf("surface.backend must be one of: auto, %s, %s", surface.WGPUName, surface.SoftwareName)
	}

	if c.Renderer.FontSize <= 0 {
		return fmt.Errorf("renderer.font_size must be positive")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be between 0 and 1")
	}

	if c.Journal.Enabled && c.Journal.DSN == "" {
		return fmt.Errorf("journal.dsn is required when the journal is enabled")
	}

	return nil
}

// Request returns the framebuffer request described by the profile.
func (p ProfileConfig) Request() surface.Request {
	r := surface.Request{
		RedBits:     p.Red,
		GreenBits:   p.Green,
		BlueBits:    p.Blue,
		AlphaBits:   p.Alpha,
		DepthBits:   p.Depth,
		StencilBits: p.Stencil,
	}
	if p.Samples > 0 {
		r.SampleBuffers = 1
		r.Samples = p.Samples
	}
	return r
}
