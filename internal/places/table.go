// Package places normalizes scraped POI result files into a combined
// tabular dataset: locate files, load records, flatten nested fields,
// resolve canonical coordinates, consolidate, and deduplicate.
package places

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Row is one flattened record. A key that is absent from the map is the
// missing marker; it is distinct from a present empty string.
type Row map[string]any

// String returns the cell rendered as a string, or "" when missing.
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok {
		return ""
	}
	return cellString(v)
}

// Has reports whether the column is present on this row.
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// StringMap renders every present cell as a string. Missing cells stay
// absent, so downstream consumers keep the missing/empty distinction to
// the extent CSV round-trips allow.
func (r Row) StringMap() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = cellString(v)
	}
	return out
}

// Table is an ordered sequence of rows whose column set is the union of
// all columns seen so far. Row order is preserved end to end; it is the
// basis for first-occurrence-wins deduplication.
type Table struct {
	cols []string
	seen map[string]bool
	rows []Row
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{seen: make(map[string]bool)}
}

// Append adds a row and registers any new columns. A row's own keys are
// registered in sorted order so the union column order is stable across
// runs regardless of map iteration.
func (t *Table) Append(r Row) {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t.EnsureColumns(keys...)
	t.rows = append(t.rows, r)
}

// EnsureColumns registers columns that are not yet part of the union,
// preserving first-seen order.
func (t *Table) EnsureColumns(cols ...string) {
	for _, c := range cols {
		if !t.seen[c] {
			t.seen[c] = true
			t.cols = append(t.cols, c)
		}
	}
}

// HasColumn reports whether the column is part of the union.
func (t *Table) HasColumn(col string) bool {
	return t.seen[col]
}

// Columns returns the union column set in first-seen order.
func (t *Table) Columns() []string {
	return t.cols
}

// Rows returns the rows in insertion order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// cellString renders one cell value for keys and CSV output.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
