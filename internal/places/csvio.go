package places

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// WriteTableCSV writes the table with a header row. Missing cells are
// written as empty fields; the in-memory missing/empty distinction does
// not survive the CSV round-trip, which downstream stages account for.
func WriteTableCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "places: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.Columns()
	if err := w.Write(cols); err != nil {
		return eris.Wrapf(err, "places: write header %s", path)
	}

	record := make([]string, len(cols))
	for _, r := range t.Rows() {
		for i, c := range cols {
			record[i] = r.String(c)
		}
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "places: write row %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "places: flush %s", path)
	}
	return nil
}

// ReadTableCSV reads a header-and-rows CSV back into a table. All cells
// come back as strings, preserving exact text.
func ReadTableCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "places: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "places: read %s", path)
	}
	if len(records) == 0 {
		return NewTable(), nil
	}

	header := records[0]
	t := NewTable()
	t.EnsureColumns(header...)

	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, c := range header {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.Append(row)
	}
	return t, nil
}

// WriteCountsCSV writes a count aggregate with the given key column
// names plus a trailing "count" column.
func WriteCountsCSV(path string, keyCols []string, counts []Count) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "places: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, keyCols...), "count")
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "places: write header %s", path)
	}
	for _, c := range counts {
		record := append(append([]string{}, c.Key...), strconv.Itoa(c.N))
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "places: write row %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "places: flush %s", path)
	}
	return nil
}

// WriteSummary writes the human-readable "key = count" summary file, one
// line per entry plus a trailing newline.
func WriteSummary(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return eris.Wrapf(err, "places: write %s", path)
	}
	return nil
}
