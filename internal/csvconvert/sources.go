// Package csvconvert serves dataset CSV files as JSON row sets and derives
// the secondary sources (website with address, merged) from the raw ones.
package csvconvert

import (
	"errors"

	"github.com/leapstack-labs/csvview/pkg/core"
)

var (
	// ErrUnknownDataset is returned for identifiers with no configured source.
	ErrUnknownDataset = errors.New("Invalid dataset type") //nolint:staticcheck // message is part of the HTTP contract
	// ErrSourceNotFound is returned when a source file does not exist.
	ErrSourceNotFound = errors.New("File not found") //nolint:staticcheck // message is part of the HTTP contract
)

// Source describes where a dataset's CSV lives and how it is delimited.
type Source struct {
	File      string
	Separator rune
}

// Source file names.
const (
	GoogleFile         = "google_dataset.csv"
	WebsiteFile        = "website_dataset.csv"
	WebsiteAddressFile = "website_dataset_with_address.csv"
	FacebookFile       = "facebook_dataset.csv"
	MergedFile         = "merged_dataset.csv"
)

// Sources maps dataset identifiers to their source files.
type Sources map[core.DatasetID]Source

// DefaultSources returns the built-in dataset sources.
func DefaultSources() Sources {
	return Sources{
		core.DatasetGoogle:         {File: GoogleFile, Separator: ','},
		core.DatasetWebsite:        {File: WebsiteFile, Separator: ';'},
		core.DatasetWebsiteAddress: {File: WebsiteAddressFile, Separator: ','},
		core.DatasetFacebook:       {File: FacebookFile, Separator: ','},
		core.DatasetMerged:         {File: MergedFile, Separator: ','},
	}
}

// Lookup returns the source for id.
func (s Sources) Lookup(id core.DatasetID) (Source, error) {
	src, ok := s[id]
	if !ok {
		return Source{}, ErrUnknownDataset
	}
	return src, nil
}
