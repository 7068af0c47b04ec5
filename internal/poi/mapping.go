package poi

import (
	"fmt"
	"strings"
)

// MappingEntry documents how one destination column is derived, for the
// show-mapping preview.
type MappingEntry struct {
	Column  string
	From    []string
	Default string
}

// MappingSpec is the CSV -> DB mapping specification, in Columns order.
var MappingSpec = []MappingEntry{
	{Column: "status2", Default: "Active"},
	{Column: "status", Default: "Active"},
	{Column: "mark_type", Default: "Point"},
	{Column: "use_type", From: []string{"location_type"}, Default: "upload.use_type"},
	{Column: "location", From: []string{"lat", "lon"}, Default: "[[lat,lon]] else composite else name"},
	{Column: "radius", Default: "--radius (unset -> NULL)"},
	{Column: "name", From: []string{"name"}, Default: "required, truncated to 50"},
	{Column: "description", From: []string{"address", "plus_code", "area", "city", "formatted_address"}, Default: "joined with ' + ' else name"},
	{Column: "created", Default: "UTC now"},
	{Column: "updated", Default: "UTC now"},
	{Column: "created_by_id", Default: "--created-by-id"},
	{Column: "updated_by_id", Default: "--updated-by-id"},
	{Column: "speed_limit", Default: "--speed-limit (unset -> NULL)"},
	{Column: "alert_type", Default: "--alert-type else 'none'"},
	{Column: "lat", From: []string{"lat"}},
	{Column: "lon", From: []string{"lon"}},
	{Column: "address", From: []string{"address", "plus_code", "area", "city", "formatted_address"}, Default: "joined with ' + ' else NULL"},
	{Column: "pluscode", From: []string{"plus_code", "pluscode"}},
	{Column: "area", From: []string{"area"}},
	{Column: "city", From: []string{"city"}},
	{Column: "state", From: []string{"state"}},
	{Column: "pincode", From: []string{"pincode"}},
	{Column: "phone", From: []string{"phone"}},
	{Column: "website", From: []string{"website"}},
}

// FormatMappingSpec renders the mapping specification as aligned text.
func FormatMappingSpec() string {
	var b strings.Builder
	b.WriteString("DB mapping specification (column <- sources | default):\n")
	for _, e := range MappingSpec {
		from := "-"
		if len(e.From) > 0 {
			from = strings.Join(e.From, ", ")
		}
		def := e.Default
		if def == "" {
			def = "NULL when empty"
		}
		fmt.Fprintf(&b, "  %-14s <- %-55s | %s\n", e.Column, from, def)
	}
	return b.String()
}
