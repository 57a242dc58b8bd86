package viewer

import "github.com/leapstack-labs/csvview/pkg/core"

// Messages shown in place of the table.
const (
	LoadingMessage = "Loading..."
	EmptyMessage   = "No data available yet"
)

// View is what a renderer should display. It is one of LoadingView,
// EmptyView, or PopulatedView.
type View interface {
	isView()
}

// LoadingView is shown while the latest dataset request is in flight.
type LoadingView struct{}

// EmptyView is shown when nothing is loading and there are no rows.
type EmptyView struct{}

// PopulatedView carries the table to render.
type PopulatedView struct {
	Table Table
}

func (LoadingView) isView()   {}
func (EmptyView) isView()     {}
func (PopulatedView) isView() {}

// Table is the bounded slice of rows a renderer draws, already reduced to
// display text.
type Table struct {
	Headers []string
	Rows    [][]string
	// Total is the number of rows held in state, before the cap was applied.
	Total int
}

// BuildTable renders min(rowCap, len(rows)) rows under the given headers.
// Cells are looked up by header; missing keys render as "".
func BuildTable(rows []core.Row, headers []string, rowCap int) Table {
	visible := Truncate(rows, rowCap)

	t := Table{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]string, 0, len(visible)),
		Total:   len(rows),
	}
	for _, row := range visible {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = row.Cell(h)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
