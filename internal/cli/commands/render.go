package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// Output formats accepted by show.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists the output formats in completion order.
var Formats = []string{FormatTable, FormatMarkdown, FormatCSV, FormatJSON}

// renderView writes what a viewer would display for v.
func renderView(w io.Writer, v viewer.View, format string) error {
	switch v := v.(type) {
	case viewer.LoadingView:
		_, err := fmt.Fprintln(w, viewer.LoadingMessage)
		return err
	case viewer.EmptyView:
		_, err := fmt.Fprintln(w, viewer.EmptyMessage)
		return err
	case viewer.PopulatedView:
		return renderTable(w, v.Table, format)
	default:
		return fmt.Errorf("unknown view %T", v)
	}
}

func renderTable(w io.Writer, tbl viewer.Table, format string) error {
	if format == FormatJSON {
		return renderJSON(w, tbl)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(tbl.Headers))
	for i, h := range tbl.Headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, cells := range tbl.Rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	switch format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
		return nil
	case FormatTable, "":
		t.Render()
	default:
		return fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
	}

	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(tbl.Rows), tbl.Total)
	return nil
}

func renderJSON(w io.Writer, tbl viewer.Table) error {
	rows := make([]core.Row, len(tbl.Rows))
	for i, cells := range tbl.Rows {
		kv := make([]any, 0, 2*len(cells))
		for j, c := range cells {
			kv = append(kv, tbl.Headers[j], c)
		}
		rows[i] = core.NewRow(kv...)
	}
	if err := core.EncodeRows(w, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
