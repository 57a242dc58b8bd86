// Package dataview provides the data viewer page and its live controls.
package dataview

// Signals represents the signals sent from the frontend.
type Signals struct {
	Dataset string `json:"dataset"`
}
