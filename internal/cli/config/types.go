// Package config provides configuration management for the csvview CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// Default configuration values.
const (
	DefaultDataDir    = "public"
	DefaultPort       = 8765
	DefaultSessionTTL = viewer.DefaultSessionTTL
)

// DefaultCaps are the row caps offered by the viewer.
var DefaultCaps = []int{50, 100, 150, 200, 300, 500, 1000}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port           int           `koanf:"port"`
	AutoOpen       bool          `koanf:"auto_open"`
	Watch          bool          `koanf:"watch"`
	DefaultDataset string        `koanf:"default_dataset"`
	DefaultCap     int           `koanf:"default_cap"`
	Caps           []int         `koanf:"caps"`
	SessionSecret  string        `koanf:"session_secret"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:           DefaultPort,
		AutoOpen:       true,
		Watch:          true,
		DefaultDataset: string(core.DefaultDataset),
		DefaultCap:     viewer.DefaultRowCap,
		Caps:           append([]int(nil), DefaultCaps...),
		SessionTTL:     DefaultSessionTTL,
	}
}

// DatasetConfig overrides or adds a dataset source.
type DatasetConfig struct {
	File      string `koanf:"file"`
	Separator string `koanf:"separator"`
}

// Config holds all CLI configuration options.
type Config struct {
	// Endpoint is the base URL of the CSV conversion service. Empty means
	// the local one.
	Endpoint     string                   `koanf:"endpoint"`
	DataDir      string                   `koanf:"data_dir"`
	Verbose      bool                     `koanf:"verbose"`
	UI           *UIConfig                `koanf:"ui"`
	Datasets     map[string]DatasetConfig `koanf:"datasets"`
	ColumnOrders map[string][]string      `koanf:"column_orders"`
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.DefaultDataset == "" {
		ui.DefaultDataset = string(core.DefaultDataset)
	}
	if ui.DefaultCap == 0 {
		ui.DefaultCap = viewer.DefaultRowCap
	}
	if len(ui.Caps) == 0 {
		ui.Caps = append([]int(nil), DefaultCaps...)
	}
	if ui.SessionTTL == 0 {
		ui.SessionTTL = DefaultSessionTTL
	}
	return ui
}

// Sources returns the built-in dataset sources with the configured
// overrides applied. Call Validate first.
func (c *Config) Sources() csvconvert.Sources {
	sources := csvconvert.DefaultSources()
	for id, ds := range c.Datasets {
		src := sources[core.DatasetID(id)]
		if ds.File != "" {
			src.File = ds.File
		}
		if ds.Separator != "" {
			src.Separator = []rune(ds.Separator)[0]
		}
		sources[core.DatasetID(id)] = src
	}
	return sources
}

// GetColumnOrders returns the default column orders with the configured
// ones applied.
func (c *Config) GetColumnOrders() viewer.ColumnOrders {
	orders := viewer.DefaultColumnOrders()
	for id, cols := range c.ColumnOrders {
		orders[core.DatasetID(id)] = append([]string(nil), cols...)
	}
	return orders
}
