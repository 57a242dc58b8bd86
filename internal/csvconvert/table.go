package csvconvert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// Table is a parsed CSV file: one header record and the data records that
// matched its width.
type Table struct {
	Header  []string
	Records [][]string
	// Skipped counts records dropped for a bad field count or bad quoting.
	Skipped int
}

// ReadTable parses the CSV file at path using sep as the field delimiter.
func ReadTable(path string, sep rune) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ParseTable(f, sep)
}

// ParseTable parses CSV from r. The first record is the header. Short records
// are padded with empty cells; records wider than the header, or that fail to
// parse, are skipped.
func ParseTable(r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			t.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if t.Header == nil {
			if len(rec) > 0 {
				rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			}
			t.Header = dedupeHeader(rec)
			continue
		}
		if len(rec) > len(t.Header) {
			t.Skipped++
			continue
		}
		for len(rec) < len(t.Header) {
			rec = append(rec, "")
		}
		t.Records = append(t.Records, rec)
	}

	if t.Header == nil {
		t.Header = []string{}
	}
	return t, nil
}

// dedupeHeader renames repeated column names to name.1, name.2, ...
func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			out[i] = h
			continue
		}
		out[i] = h + "." + strconv.Itoa(n)
	}
	return out
}

// Rows converts the table to rows keyed by header, in header order.
func (t *Table) Rows() []core.Row {
	rows := make([]core.Row, 0, len(t.Records))
	for _, rec := range t.Records {
		var row core.Row
		for i, col := range t.Header {
			row.Set(col, rec[i])
		}
		rows = append(rows, row)
	}
	return rows
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// TrimHeader strips surrounding whitespace from every header name.
func (t *Table) TrimHeader() {
	for i, h := range t.Header {
		t.Header[i] = strings.TrimSpace(h)
	}
}

// WriteTable writes t as comma-separated CSV to path.
func WriteTable(path string, t *Table) error {
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.WriteAll(t.Records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
