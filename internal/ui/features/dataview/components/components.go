// Package components renders the data viewer page and its live fragments.
// The markup lives in components.templ; run `templ generate` after editing it.
package components

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// DatastarScript is the client runtime loaded by every page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// ViewerID is the element id morphed by server-sent patches.
const ViewerID = "viewer"

// ViewerData is everything the viewer fragment renders.
type ViewerData struct {
	Snapshot viewer.Snapshot
	Datasets []core.DatasetOption
	Caps     []int
}

var signalJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// signals returns the initial datastar signals object for the page.
func signals(dataset core.DatasetID) (string, error) {
	return signalJSON.MarshalToString(map[string]string{"dataset": dataset.String()})
}

func capAction(n int) string {
	return fmt.Sprintf("@post('/viewer/cap/%d')", n)
}

func countLabel(snap viewer.Snapshot) string {
	return fmt.Sprintf("Showing %d of %d rows", min(snap.RowCap, len(snap.Rows)), len(snap.Rows))
}
