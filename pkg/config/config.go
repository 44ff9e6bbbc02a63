// Package config loads chatlayout settings from .chatlayout/config.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project settings directory.
const DirName = ".chatlayout"

// FileName is the settings file inside DirName.
const FileName = "config.yaml"

// Config is the root of a chatlayout settings file.
type Config struct {
	// Layout controls how measurements are turned into a layout
	Layout LayoutConfig `yaml:"layout,omitempty" json:"layout,omitempty"`

	// Retire controls background release of replaced layouts
	Retire RetireConfig `yaml:"retire,omitempty" json:"retire,omitempty"`

	// Source points at the transcript to lay out
	Source SourceConfig `yaml:"source,omitempty" json:"source,omitempty"`

	// Render controls the terminal viewer
	Render RenderConfig `yaml:"render,omitempty" json:"render,omitempty"`
}

// LayoutConfig controls layout construction.
type LayoutConfig struct {
	// Width fixes the layout width in cells (default: 0 = terminal width)
	Width int `yaml:"width,omitempty" json:"width,omitempty"`

	// MessageMargin is the gap below each message (default: 1)
	MessageMargin *int `yaml:"message_margin,omitempty" json:"message_margin,omitempty"`

	// HeaderMargin is the gap below each date separator (default: 0)
	HeaderMargin *int `yaml:"header_margin,omitempty" json:"header_margin,omitempty"`

	// StrictContracts panics on contract violations instead of logging them
	StrictContracts bool `yaml:"strict_contracts,omitempty" json:"strict_contracts,omitempty"`
}

// RetireConfig controls the background retire queue.
type RetireConfig struct {
	// Disabled drops replaced layouts inline
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`

	// QueueSize bounds pending releases (default: 16)
	QueueSize int `yaml:"queue_size,omitempty" json:"queue_size,omitempty"`
}

// SourceConfig locates the transcript.
type SourceConfig struct {
	// Path to a .jsonl, .json, .yaml or .db transcript, relative to the
	// project root or absolute
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Watch reloads the transcript when the file changes (default: true)
	Watch *bool `yaml:"watch,omitempty" json:"watch,omitempty"`

	// DebounceMS coalesces bursts of file events (default: 200)
	DebounceMS int `yaml:"debounce_ms,omitempty" json:"debounce_ms,omitempty"`
}

// RenderConfig controls the terminal viewer.
type RenderConfig struct {
	// Markdown renders message bodies as markdown (default: false)
	Markdown bool `yaml:"markdown,omitempty" json:"markdown,omitempty"`

	// GlamourStyle names the glamour style used for markdown (default: dark)
	GlamourStyle string `yaml:"glamour_style,omitempty" json:"glamour_style,omitempty"`

	// HideHelp removes the key help line
	HideHelp bool `yaml:"hide_help,omitempty" json:"hide_help,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{}
}

// Load reads and validates the settings file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML settings.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Layout.Width < 0 {
		return fmt.Errorf("layout.width must not be negative, got %d", c.Layout.Width)
	}
	if c.Layout.MessageMargin != nil && *c.Layout.MessageMargin < 0 {
		return fmt.Errorf("layout.message_margin must not be negative, got %d", *c.Layout.MessageMargin)
	}
	if c.Layout.HeaderMargin != nil && *c.Layout.HeaderMargin < 0 {
		return fmt.Errorf("layout.header_margin must not be negative, got %d", *c.Layout.HeaderMargin)
	}
	if c.Retire.QueueSize < 0 {
		return fmt.Errorf("retire.queue_size must not be negative, got %d", c.Retire.QueueSize)
	}
	if c.Source.DebounceMS < 0 {
		return fmt.Errorf("source.debounce_ms must not be negative, got %d", c.Source.DebounceMS)
	}
	return nil
}

// GetMessageMargin returns the effective gap below messages
func (l *LayoutConfig) GetMessageMargin() int {
	if l.MessageMargin != nil {
		return *l.MessageMargin
	}
	return 1
}

// GetHeaderMargin returns the effective gap below date separators
func (l *LayoutConfig) GetHeaderMargin() int {
	if l.HeaderMargin != nil {
		return *l.HeaderMargin
	}
	return 0
}

// GetQueueSize returns the effective retire queue size
func (r *RetireConfig) GetQueueSize() int {
	if r.QueueSize > 0 {
		return r.QueueSize
	}
	return 16
}

// ShouldWatch reports whether the transcript should be watched
func (s *SourceConfig) ShouldWatch() bool {
	if s.Watch != nil {
		return *s.Watch
	}
	return true
}

// GetDebounce returns the effective debounce delay
func (s *SourceConfig) GetDebounce() time.Duration {
	if s.DebounceMS > 0 {
		return time.Duration(s.DebounceMS) * time.Millisecond
	}
	return 200 * time.Millisecond
}

// GetGlamourStyle returns the effective glamour style name
func (r *RenderConfig) GetGlamourStyle() string {
	if r.GlamourStyle != "" {
		return r.GlamourStyle
	}
	return "dark"
}
