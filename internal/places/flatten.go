package places

import "encoding/json"

// Flatten converts an arbitrarily nested record into a single-level row
// with dotted path keys (geometry.location.lat). Nested maps recurse;
// nested arrays stay one column holding their JSON serialization, so a
// "types" list remains a single field instead of exploding into rows.
func Flatten(rec map[string]any) Row {
	out := make(Row, len(rec))
	flattenInto(out, "", rec)
	return out
}

func flattenInto(out Row, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flattenInto(out, key, x)
		case []any:
			b, err := json.Marshal(x)
			if err != nil {
				continue
			}
			out[key] = string(b)
		default:
			out[key] = v
		}
	}
}
