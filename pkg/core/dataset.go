package core

// DatasetID selects which named source the conversion endpoint converts.
// Any string is a valid DatasetID as far as the viewer is concerned; only the
// backend decides whether it recognizes it.
type DatasetID string

// Known dataset identifiers.
const (
	DatasetGoogle         DatasetID = "google"
	DatasetWebsite        DatasetID = "website"
	DatasetWebsiteAddress DatasetID = "website_address"
	DatasetFacebook       DatasetID = "facebook"
	DatasetMerged         DatasetID = "merged"
)

// DefaultDataset is selected when a session starts.
const DefaultDataset = DatasetGoogle

// DatasetOption is one entry of the dataset selector.
type DatasetOption struct {
	ID    DatasetID
	Label string
}

// KnownDatasets returns the selectable datasets in display order.
func KnownDatasets() []DatasetOption {
	return []DatasetOption{
		{ID: DatasetGoogle, Label: "Google Dataset"},
		{ID: DatasetWebsite, Label: "Website Dataset"},
		{ID: DatasetWebsiteAddress, Label: "Website Dataset with Address"},
		{ID: DatasetFacebook, Label: "Facebook Dataset"},
		{ID: DatasetMerged, Label: "Combined Dataset"},
	}
}

// IsKnown reports whether id is one of the KnownDatasets.
func (id DatasetID) IsKnown() bool {
	for _, opt := range KnownDatasets() {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (id DatasetID) String() string {
	return string(id)
}
