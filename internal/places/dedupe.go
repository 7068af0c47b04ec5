package places

// SynthesizeAddress builds the identity address for a row: the first
// non-empty of formatted_address and vicinity, else "". A present but
// empty field counts the same as an absent one, so two same-named
// entities with no address information anywhere collapse to one row.
// Dedup counts depend on that conflation.
func SynthesizeAddress(r Row) string {
	if v := r.String("formatted_address"); v != "" {
		return v
	}
	return r.String("vicinity")
}

// DedupeResult is the deduplicated table plus removal counts.
type DedupeResult struct {
	Table   *Table
	Kept    int
	Removed int
}

// Dedupe removes exact duplicates on the (name, synthesized address)
// identity key. Comparison is exact string equality, case- and
// whitespace-sensitive. Rows are scanned in their existing order and the
// first occurrence of a key wins; the synthesized "address" column is
// stamped on every surviving row. Running Dedupe on its own output
// removes nothing.
func Dedupe(t *Table) *DedupeResult {
	out := NewTable()
	out.EnsureColumns(t.Columns()...)
	out.EnsureColumns("address")

	type key struct{ name, address string }
	seen := make(map[key]bool)

	removed := 0
	for _, r := range t.Rows() {
		addr := SynthesizeAddress(r)
		k := key{name: r.String("name"), address: addr}
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		r["address"] = addr
		out.Append(r)
	}

	return &DedupeResult{Table: out, Kept: out.Len(), Removed: removed}
}
