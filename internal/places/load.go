package places

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// wrapperKeys are the conventional wrapper-key names searched, in order,
// when a result file's top level is an object rather than a list.
var wrapperKeys = []string{"results", "data", "items", "places"}

// LoadRecords reads one result file and returns its records. A top-level
// list is used directly; an object is searched for the first wrapper key
// holding a list, else treated as a single record; any other shape yields
// zero records. Only unreadable or unparseable files return an error, and
// the consolidator downgrades that to a skip.
func LoadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "places: read %s", path)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrapf(err, "places: parse %s", path)
	}

	return recordsFromValue(v), nil
}

func recordsFromValue(v any) []map[string]any {
	switch x := v.(type) {
	case []any:
		return recordsFromList(x)
	case map[string]any:
		for _, key := range wrapperKeys {
			if list, ok := x[key].([]any); ok {
				return recordsFromList(list)
			}
		}
		return []map[string]any{x}
	default:
		return nil
	}
}

// recordsFromList keeps only object elements; scalars inside a result
// list carry no fields and contribute nothing.
func recordsFromList(list []any) []map[string]any {
	var out []map[string]any
	for _, el := range list {
		if rec, ok := el.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}
