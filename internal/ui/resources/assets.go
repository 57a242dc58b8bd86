// Package resources serves the UI's static assets, embedded in release builds
// and read from disk when built with the dev tag.
package resources

import "strings"

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Prefix is the URL prefix every static asset is served under.
const Prefix = "/static/"

// Stylesheet is the viewer's only stylesheet.
const Stylesheet = "app.css"

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return Prefix + strings.TrimPrefix(path, "/")
}
