package places

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Distinct degenerate outcomes: a directory with no result files at all
// versus files that together contribute zero (valid) rows. Neither writes
// outputs.
var (
	ErrNoResultFiles = eris.New("places: no result files found")
	ErrNoValidRows   = eris.New("places: no valid rows across result files")
)

// baselineColumns are guaranteed to exist in the combined table even when
// absent from every source record, so downstream consumers can rely on
// them.
var baselineColumns = []string{
	"name",
	"formatted_address",
	"vicinity",
	"place_id",
	"rating",
	"user_ratings_total",
	"types",
}

// derivedColumns are stamped onto every consolidated row.
var derivedColumns = []string{"lat", "lon", "location_type", "area", "city", "source_file"}

// ConsolidateOptions controls the consolidation run.
type ConsolidateOptions struct {
	// ValidateCoords drops rows whose canonical lat/lon are missing,
	// non-finite, or out of range. The unfiltered variant feeds the
	// no-lat/lon dedup stats.
	ValidateCoords bool
}

// ConsolidateResult is the combined table plus the audit counts for every
// stage of data loss.
type ConsolidateResult struct {
	Table        *Table
	FilesFound   int
	FilesSkipped int
	RowsLoaded   int
	RowsDropped  int
}

// Consolidate runs Locator -> Loader -> Flattener -> Canonicalizer over
// every result file under root, stamps file-derived metadata on each row,
// and accumulates one combined table. Row order follows the sorted file
// order and, within a file, record order.
func Consolidate(root string, opts ConsolidateOptions) (*ConsolidateResult, error) {
	log := zap.L().With(zap.String("dir", root))

	files, err := FindResultFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoResultFiles
	}

	res := &ConsolidateResult{Table: NewTable(), FilesFound: len(files)}

	for _, fp := range files {
		meta := ParseFileMeta(fp)

		recs, err := LoadRecords(fp)
		if err != nil {
			log.Warn("skipping unreadable result file", zap.String("file", fp), zap.Error(err))
			res.FilesSkipped++
			continue
		}
		if len(recs) == 0 {
			continue
		}

		area := strings.ReplaceAll(meta.Area, "_", " ")
		for _, rec := range recs {
			row := Flatten(rec)
			ResolveCoordinates(row)
			res.RowsLoaded++

			if opts.ValidateCoords && !ValidCoordinates(row) {
				res.RowsDropped++
				continue
			}

			row["location_type"] = strings.ToLower(meta.LocationType)
			row["area"] = area
			row["city"] = strings.ToLower(meta.City)
			row["source_file"] = filepath.Base(fp)
			res.Table.Append(row)
		}
	}

	if res.Table.Len() == 0 {
		return nil, ErrNoValidRows
	}

	res.Table.EnsureColumns(baselineColumns...)
	res.Table.EnsureColumns(derivedColumns...)

	log.Info("consolidated result files",
		zap.Int("files_found", res.FilesFound),
		zap.Int("files_skipped", res.FilesSkipped),
		zap.Int("rows_loaded", res.RowsLoaded),
		zap.Int("rows_dropped", res.RowsDropped),
		zap.Int("rows_kept", res.Table.Len()),
	)
	return res, nil
}

// Count is one group in a count aggregate: the group key values in
// grouping-column order, and the row count.
type Count struct {
	Key []string
	N   int
}

// CountBy aggregates row counts over the given columns, sorted by the key
// fields in order.
func CountBy(t *Table, cols ...string) []Count {
	groups := make(map[string]*Count)
	var order []string

	for _, r := range t.Rows() {
		key := make([]string, len(cols))
		for i, c := range cols {
			key[i] = r.String(c)
		}
		k := strings.Join(key, "\x00")
		if g, ok := groups[k]; ok {
			g.N++
			continue
		}
		groups[k] = &Count{Key: key, N: 1}
		order = append(order, k)
	}

	sort.Strings(order)
	out := make([]Count, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// SummaryLines renders counts as "key fields = count" lines.
func SummaryLines(counts []Count) []string {
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, strings.Join(c.Key, " ")+" = "+strconv.Itoa(c.N))
	}
	return lines
}
