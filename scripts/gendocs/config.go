package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/csvview/internal/cli/config"
	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// getConfigSchema returns the configuration keys read by config.LoadConfig.
func getConfigSchema() []ConfigField {
	ui := config.DefaultUIConfig()

	caps := make([]string, len(ui.Caps))
	for i, n := range ui.Caps {
		caps[i] = strconv.Itoa(n)
	}

	return []ConfigField{
		{Name: "data_dir", Type: "string", Default: config.DefaultDataDir, Description: "Directory holding the dataset CSV files, relative to the config file"},
		{Name: "endpoint", Type: "string", Description: "Base URL of an external CSV conversion endpoint; empty serves the data directory"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging"},
		{Name: "ui.port", Type: "int", Default: strconv.Itoa(ui.Port), Description: "Port the viewer listens on"},
		{Name: "ui.auto_open", Type: "bool", Default: strconv.FormatBool(ui.AutoOpen), Description: "Open a browser when serve starts"},
		{Name: "ui.watch", Type: "bool", Default: strconv.FormatBool(ui.Watch), Description: "Reload CSV files when they change"},
		{Name: "ui.default_dataset", Type: "string", Default: ui.DefaultDataset, Description: "Dataset selected when a session starts"},
		{Name: "ui.default_cap", Type: "int", Default: strconv.Itoa(ui.DefaultCap), Description: "Row cap before one is picked"},
		{Name: "ui.caps", Type: "[]int", Default: "[" + strings.Join(caps, ", ") + "]", Description: "Row caps offered by the viewer"},
		{Name: "ui.session_secret", Type: "string", Description: "Key for signing session cookies; random per process when empty"},
		{Name: "ui.session_ttl", Type: "duration", Default: ui.SessionTTL.String(), Description: "How long an idle session keeps its view"},
		{Name: "datasets.<id>.file", Type: "string", Description: "Source file of a dataset, relative to data_dir"},
		{Name: "datasets.<id>.separator", Type: "string", Description: "Single-character field separator of the source file"},
		{Name: "column_orders.<id>", Type: "[]string", Description: "Fixed column order for a dataset"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "csvview configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("csvview reads `csvview.yaml` from the working directory, or the file given with `--config`. " +
		"Environment variables prefixed with `" + config.EnvPrefix + "` override the file, and flags override both.")

	w.Header(2, "Keys")
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), f.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Description"}, rows)

	w.Header(2, "Datasets")
	w.Paragraph("Built-in dataset sources:")
	sources := csvconvert.DefaultSources()
	var dsRows [][]string
	for _, opt := range core.KnownDatasets() {
		src, ok := sources[opt.ID]
		if !ok {
			continue
		}
		dsRows = append(dsRows, []string{InlineCode(opt.ID.String()), opt.Label, InlineCode(src.File), InlineCode(string(src.Separator))})
	}
	w.Table([]string{"ID", "Label", "File", "Separator"}, dsRows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `data_dir: ./public
ui:
  port: 8765
  default_dataset: merged
  default_cap: 100
datasets:
  website:
    separator: ";"
column_orders:
  merged: [name, phone, address, category, source]`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
