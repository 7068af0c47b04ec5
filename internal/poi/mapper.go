// Package poi maps deduplicated place rows onto the destination
// point-of-interest schema and batch-upserts them into a relational sink.
package poi

import (
	"strconv"
	"strings"
	"time"
)

const (
	maxNameLen    = 50 // destination varchar(50)
	maxUseTypeLen = 20 // destination varchar(20)

	// partSeparator joins the non-empty composite parts of description
	// and address.
	partSeparator = " + "
)

// Columns lists the destination columns in insert order.
var Columns = []string{
	"status2", "status", "mark_type", "use_type", "location", "radius",
	"name", "description", "created", "updated", "created_by_id",
	"updated_by_id", "speed_limit", "alert_type", "lat", "lon", "address",
	"pluscode", "area", "city", "state", "pincode", "phone", "website",
}

// compositeSources is the priority order for the description/address
// composite. Each group resolves to its first non-empty source column;
// plus_code has a legacy pluscode alias.
var compositeSources = [][]string{
	{"address"},
	{"plus_code", "pluscode"},
	{"area"},
	{"city"},
	{"formatted_address"},
}

// Defaults holds caller-supplied override values for the static and
// defaulted destination fields. Nil pointer fields insert NULL.
type Defaults struct {
	CreatedByID int
	UpdatedByID int
	Status      string
	Status2     string
	MarkType    string
	UseType     string
	AlertType   string
	Radius      *float64
	SpeedLimit  *int
}

// MappedRow is one destination row. It is constructed once per surviving
// source row and never mutated afterwards. Pointer fields are NULL when
// nil; optional passthroughs stay unset rather than defaulting.
type MappedRow struct {
	Status2     string
	Status      string
	MarkType    string
	UseType     *string
	Location    string
	Radius      *float64
	Name        string
	Description string
	Created     time.Time
	Updated     time.Time
	CreatedByID int
	UpdatedByID int
	SpeedLimit  *int
	AlertType   string
	Lat         *float64
	Lon         *float64
	Address     *string
	Pluscode    *string
	Area        *string
	City        *string
	State       *string
	Pincode     *string
	Phone       *string
	Website     *string
}

// Values returns the row's fields in Columns order.
func (m *MappedRow) Values() []any {
	return []any{
		m.Status2, m.Status, m.MarkType, m.UseType, m.Location, m.Radius,
		m.Name, m.Description, m.Created, m.Updated, m.CreatedByID,
		m.UpdatedByID, m.SpeedLimit, m.AlertType, m.Lat, m.Lon, m.Address,
		m.Pluscode, m.Area, m.City, m.State, m.Pincode, m.Phone, m.Website,
	}
}

// MapRow maps one source row onto the destination schema. ok is false
// when the row has no usable name, the only hard requirement; such rows
// are skipped and counted by the caller.
func MapRow(row map[string]string, d Defaults, now time.Time) (*MappedRow, bool) {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return nil, false
	}
	name = truncate(name, maxNameLen)

	composite := compositeValue(row)

	description := composite
	if description == "" {
		description = name
	}

	lat := parseFloatPtr(row["lat"])
	lon := parseFloatPtr(row["lon"])

	// location is the destination's mandatory field: [[lat,lon]] when
	// both coordinates are numeric, else the composite, else the name.
	var location string
	switch {
	case lat != nil && lon != nil:
		location = "[[" + formatFloat(*lat) + "," + formatFloat(*lon) + "]]"
	case composite != "":
		location = composite
	default:
		location = name
	}

	useType := firstNonEmpty(row, "location_type")
	if useType == "" {
		useType = d.UseType
	}
	var useTypePtr *string
	if useType != "" {
		t := truncate(useType, maxUseTypeLen)
		useTypePtr = &t
	}

	alertType := d.AlertType
	if alertType == "" {
		alertType = "none" // destination NOT NULL
	}

	var addressPtr *string
	if composite != "" {
		addressPtr = &composite
	}

	return &MappedRow{
		Status2:     d.Status2,
		Status:      d.Status,
		MarkType:    d.MarkType,
		UseType:     useTypePtr,
		Location:    location,
		Radius:      d.Radius,
		Name:        name,
		Description: description,
		Created:     now,
		Updated:     now,
		CreatedByID: d.CreatedByID,
		UpdatedByID: d.UpdatedByID,
		SpeedLimit:  d.SpeedLimit,
		AlertType:   alertType,
		Lat:         lat,
		Lon:         lon,
		Address:     addressPtr,
		Pluscode:    nilIfEmpty(firstNonEmpty(row, "plus_code", "pluscode")),
		Area:        nilIfEmpty(firstNonEmpty(row, "area")),
		City:        nilIfEmpty(firstNonEmpty(row, "city")),
		State:       nilIfEmpty(firstNonEmpty(row, "state")),
		Pincode:     nilIfEmpty(firstNonEmpty(row, "pincode")),
		Phone:       nilIfEmpty(firstNonEmpty(row, "phone")),
		Website:     nilIfEmpty(firstNonEmpty(row, "website")),
	}, true
}

// compositeValue concatenates every non-empty composite source with the
// part separator. Present-but-empty and absent columns behave the same
// here.
func compositeValue(row map[string]string) string {
	var parts []string
	for _, group := range compositeSources {
		if v := firstNonEmpty(row, group...); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, partSeparator)
}

// firstNonEmpty is the generic first-present-wins resolver over source
// columns. Values are trimmed before the emptiness check.
func firstNonEmpty(row map[string]string, cols ...string) string {
	for _, c := range cols {
		if v := strings.TrimSpace(row[c]); v != "" {
			return v
		}
	}
	return ""
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// formatFloat renders the shortest round-trip representation, matching
// the stored [[lat,lon]] convention.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
