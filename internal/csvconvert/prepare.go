package csvconvert

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// AddressColumns are joined, in this order, into the derived address column.
var AddressColumns = []string{"main_city", "main_region", "main_country"}

// MergedColumns is the column layout of the merged source file.
var MergedColumns = []string{"name", "phone", "category", "source", "address"}

// mergePriority lists merge inputs from most to least trusted.
var mergePriority = []core.DatasetID{core.DatasetGoogle, core.DatasetWebsite, core.DatasetFacebook}

// categoryAliases renames per-source category columns to "category".
var categoryAliases = map[core.DatasetID]string{
	core.DatasetWebsite:  "s_category",
	core.DatasetFacebook: "categories",
}

// AddAddress returns a new table with the AddressColumns of t combined into a
// trailing "address" column. Blank parts are left out and the source columns
// are dropped. The header of t is trimmed in place first.
func AddAddress(t *Table) *Table {
	t.TrimHeader()

	var parts []int
	drop := map[int]bool{}
	for _, col := range AddressColumns {
		if i := t.Column(col); i >= 0 {
			parts = append(parts, i)
			drop[i] = true
		}
	}

	out := &Table{Skipped: t.Skipped}
	for i, h := range t.Header {
		if !drop[i] {
			out.Header = append(out.Header, h)
		}
	}
	out.Header = append(out.Header, "address")

	for _, rec := range t.Records {
		row := make([]string, 0, len(out.Header))
		for i, v := range rec {
			if !drop[i] {
				row = append(row, v)
			}
		}
		row = append(row, joinAddress(rec, parts))
		out.Records = append(out.Records, row)
	}
	return out
}

func joinAddress(rec []string, parts []int) string {
	vals := make([]string, 0, len(parts))
	for _, i := range parts {
		if v := strings.TrimSpace(rec[i]); v != "" {
			vals = append(vals, v)
		}
	}
	return strings.Join(vals, ", ")
}

// cleanName removes quote and backslash characters from business names.
func cleanName(s string) string {
	s = strings.ReplaceAll(s, `"`, " ")
	s = strings.ReplaceAll(s, `\`, " ")
	return strings.TrimSpace(s)
}

// NormalizePhone strips a trailing float ".0" artifact and ensures a leading
// "+". Empty input stays empty.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimSuffix(phone, ".0")
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

type mergedRecord struct {
	values   map[string]string
	priority int
}

// Merge combines the google, website, and facebook sources in tables into a
// single table with MergedColumns. Rows sharing a phone and address keep only
// the one from the highest-priority source. Phones are compared as written and
// normalized only on output. Sources without a name column are skipped with a
// warning.
func Merge(tables map[core.DatasetID]*Table, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var all []mergedRecord
	for prio, source := range mergePriority {
		t, ok := tables[source]
		if !ok {
			logger.Warn("merge source missing", "source", source)
			continue
		}
		t.TrimHeader()

		nameCol := t.Column("name")
		if nameCol < 0 {
			nameCol = t.Column("legal_name")
		}
		if nameCol < 0 {
			logger.Warn("'name' or 'legal_name' column not found", "source", source)
			continue
		}

		categoryCol := t.Column("category")
		if alias, ok := categoryAliases[source]; ok && categoryCol < 0 {
			categoryCol = t.Column(alias)
		}
		phoneCol := t.Column("phone")
		addressCol := t.Column("address")

		var addressParts []int
		if addressCol < 0 {
			for _, col := range AddressColumns {
				if i := t.Column(col); i >= 0 {
					addressParts = append(addressParts, i)
				}
			}
		}

		for _, rec := range t.Records {
			r := mergedRecord{
				priority: prio,
				values: map[string]string{
					"name":     cleanName(rec[nameCol]),
					"phone":    cell(rec, phoneCol),
					"category": cell(rec, categoryCol),
					"source":   string(source),
				},
			}
			if addressCol >= 0 {
				r.values["address"] = rec[addressCol]
			} else {
				r.values["address"] = joinAddress(rec, addressParts)
			}
			if isBlank(r.values) {
				continue
			}
			all = append(all, r)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.values["phone"] != b.values["phone"] {
			return a.values["phone"] < b.values["phone"]
		}
		if a.values["address"] != b.values["address"] {
			return a.values["address"] < b.values["address"]
		}
		return a.priority < b.priority
	})

	out := &Table{Header: append([]string(nil), MergedColumns...)}
	seen := map[[2]string]bool{}
	for _, r := range all {
		key := [2]string{r.values["phone"], r.values["address"]}
		if seen[key] {
			continue
		}
		seen[key] = true

		r.values["phone"] = NormalizePhone(r.values["phone"])
		rec := make([]string, len(MergedColumns))
		for i, col := range MergedColumns {
			rec[i] = r.values[col]
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func cell(rec []string, i int) string {
	if i < 0 {
		return ""
	}
	return rec[i]
}

func isBlank(values map[string]string) bool {
	for k, v := range values {
		if k != "source" && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// PrepareResult reports the files written by Prepare.
type PrepareResult struct {
	WebsiteAddressPath string
	WebsiteAddressRows int
	MergedPath         string
	MergedRows         int
}

// Prepare derives the website_address and merged sources inside the
// converter's data directory and evicts them from the cache.
func (c *Converter) Prepare() (*PrepareResult, error) {
	res := &PrepareResult{}

	website, err := c.readSource(core.DatasetWebsite)
	if err != nil {
		return nil, fmt.Errorf("failed to read website source: %w", err)
	}
	withAddress := AddAddress(website)
	if res.WebsiteAddressPath, err = c.Path(core.DatasetWebsiteAddress); err != nil {
		return nil, err
	}
	if err := WriteTable(res.WebsiteAddressPath, withAddress); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", filepath.Base(res.WebsiteAddressPath), err)
	}
	res.WebsiteAddressRows = len(withAddress.Records)
	c.Invalidate(res.WebsiteAddressPath)

	tables := map[core.DatasetID]*Table{}
	for _, source := range mergePriority {
		t, err := c.readSource(source)
		if err != nil {
			c.logger.Warn("skipping merge source", "source", source, "error", err)
			continue
		}
		tables[source] = t
	}
	merged := Merge(tables, c.logger)
	if res.MergedPath, err = c.Path(core.DatasetMerged); err != nil {
		return nil, err
	}
	if err := WriteTable(res.MergedPath, merged); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", filepath.Base(res.MergedPath), err)
	}
	res.MergedRows = len(merged.Records)
	c.Invalidate(res.MergedPath)

	return res, nil
}

func (c *Converter) readSource(id core.DatasetID) (*Table, error) {
	src, err := c.sources.Lookup(id)
	if err != nil {
		return nil, err
	}
	path, err := c.Path(id)
	if err != nil {
		return nil, err
	}
	return ReadTable(path, src.Separator)
}
