package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	ui := c.GetUIConfig()
	if ui.Port < 1 || ui.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", ui.Port)
	}
	if ui.DefaultCap <= 0 {
		return fmt.Errorf("ui.default_cap must be positive, got %d", ui.DefaultCap)
	}
	for _, n := range ui.Caps {
		if n <= 0 {
			return fmt.Errorf("ui.caps must be positive, got %d", n)
		}
	}
	if ui.SessionTTL < 0 {
		return fmt.Errorf("ui.session_ttl must not be negative, got %s", ui.SessionTTL)
	}

	builtin := csvconvert.DefaultSources()
	for id, ds := range c.Datasets {
		if ds.Separator != "" && utf8.RuneCountInString(ds.Separator) != 1 {
			return fmt.Errorf("datasets.%s.separator must be a single character, got %q", id, ds.Separator)
		}
		if _, ok := builtin[core.DatasetID(id)]; ok {
			continue
		}
		if ds.File == "" {
			return fmt.Errorf("datasets.%s.file is required", id)
		}
		if ds.Separator == "" {
			return fmt.Errorf("datasets.%s.separator is required", id)
		}
	}

	for id, cols := range c.ColumnOrders {
		if len(cols) == 0 {
			return fmt.Errorf("column_orders.%s must list at least one column", id)
		}
	}

	return nil
}
