package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// WriteFile writes content under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// SetupDataDir creates a data directory holding small versions of every
// dataset source file.
func SetupDataDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()

	WriteFile(t, dir, "google_dataset.csv", strings.Join([]string{
		"name,phone,category,address",
		"Acme Bakery,+15550001,Bakery,\"1 Main St, Springfield\"",
		"Bolt Garage,15550002.0,Garage,2 Side St",
	}, "\n")+"\n")

	WriteFile(t, dir, "website_dataset.csv", strings.Join([]string{
		"legal_name;phone;s_category; main_city ;main_region;main_country",
		"Acme Bakery LLC;15550001;Food;Springfield;IL;US",
		"Cobalt Labs;15550003;Research;Shelbyville;;US",
	}, "\n")+"\n")

	WriteFile(t, dir, "website_dataset_with_address.csv", strings.Join([]string{
		"legal_name,phone,s_category,address",
		"Cobalt Labs,15550003,Research,\"Shelbyville, US\"",
	}, "\n")+"\n")

	WriteFile(t, dir, "facebook_dataset.csv", strings.Join([]string{
		"name,phone,categories,address",
		"Dune Cafe,15550004,Cafe,4 Beach Rd",
	}, "\n")+"\n")

	WriteFile(t, dir, "merged_dataset.csv", strings.Join([]string{
		"name,phone,category,source,address",
		"Acme Bakery,+15550001,Bakery,google,\"1 Main St, Springfield\"",
	}, "\n")+"\n")

	return dir
}

// Rows builds n rows with an "id" column counting from 0 and a "label"
// column.
func Rows(n int) []core.Row {
	rows := make([]core.Row, n)
	for i := range rows {
		rows[i] = core.NewRow("id", strconv.Itoa(i), "label", "row-"+strconv.Itoa(i))
	}
	return rows
}
