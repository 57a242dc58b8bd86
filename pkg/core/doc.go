// Package core defines the shared language of the csvview system.
//
// This package contains:
//   - Domain entities (Row, DatasetID)
//   - The JSON row-set codec shared by the conversion endpoint and the loader
//
// The Golden Rule: pkg/core imports ONLY stdlib and its JSON codec.
// All other packages depend on core, not the reverse.
package core
