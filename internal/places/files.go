package places

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	resultPrefix = "results_"
	resultSuffix = ".json"

	// metaUnknown is the degraded value for filenames that do not match
	// the results_{locationType}_{area}_{city}.json grammar. Malformed
	// names must never abort the batch.
	metaUnknown = "unknown"
)

// Meta is the (location_type, area, city) triple encoded in a result
// filename.
type Meta struct {
	LocationType string
	Area         string
	City         string
}

// FindResultFiles returns all results_*.json files directly under root,
// lexicographically sorted. The sort order is part of the contract: it
// fixes row order and therefore dedup tie-breaks across runs.
func FindResultFiles(root string) ([]string, error) {
	pattern := filepath.Join(root, resultPrefix+"*"+resultSuffix)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "places: glob %s", pattern)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFileMeta parses results_{locationType}_{area}_{city}.json.
// The first underscore token is the location type, the last is the city,
// and all middle tokens rejoined with "_" form the area (empty when the
// name has only two tokens). Non-matching names degrade to "unknown".
func ParseFileMeta(path string) Meta {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, resultPrefix) || !strings.HasSuffix(name, resultSuffix) {
		return Meta{LocationType: metaUnknown, Area: metaUnknown, City: metaUnknown}
	}

	core := name[len(resultPrefix) : len(name)-len(resultSuffix)]
	parts := strings.Split(core, "_")
	if len(parts) < 2 || parts[0] == "" {
		return Meta{LocationType: metaUnknown, Area: metaUnknown, City: metaUnknown}
	}

	area := ""
	if len(parts) > 2 {
		area = strings.Join(parts[1:len(parts)-1], "_")
	}
	return Meta{
		LocationType: parts[0],
		Area:         area,
		City:         parts[len(parts)-1],
	}
}
