package viewer

import "github.com/leapstack-labs/csvview/pkg/core"

// MergedColumnOrder is the preferred column sequence of the combined dataset.
var MergedColumnOrder = []string{"name", "phone", "address", "category", "source"}

// ColumnOrders maps a dataset to its preferred column sequence. Datasets
// without an entry use the natural key order of their first row.
type ColumnOrders map[core.DatasetID][]string

// DefaultColumnOrders returns the built-in column orders.
func DefaultColumnOrders() ColumnOrders {
	return ColumnOrders{
		core.DatasetMerged: append([]string(nil), MergedColumnOrder...),
	}
}

// Headers derives the table headers for rows of the given dataset.
//
// With a preferred order, the result is that order filtered to keys present
// in the first row; columns missing from the order are omitted. Without one,
// the result is the first row's keys in insertion order.
func (o ColumnOrders) Headers(id core.DatasetID, rows []core.Row) []string {
	if len(rows) == 0 {
		return []string{}
	}
	first := rows[0]

	order, ok := o[id]
	if !ok {
		return first.Keys()
	}

	headers := make([]string, 0, len(order))
	for _, col := range order {
		if first.Has(col) {
			headers = append(headers, col)
		}
	}
	return headers
}

// Headers derives headers using DefaultColumnOrders.
func Headers(id core.DatasetID, rows []core.Row) []string {
	return DefaultColumnOrders().Headers(id, rows)
}
