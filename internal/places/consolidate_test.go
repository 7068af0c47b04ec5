package places

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestConsolidate_StampsMetadataAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_Hospital_New_Market_Guwahati.json",
		`[{"name":"A","geometry":{"location":{"lat":26.1,"lng":91.7}},"formatted_address":"12 Main St"},
		  {"name":"B","geometry":{"location":{"lat":"91","lng":91.7}}}]`)

	res, err := Consolidate(dir, ConsolidateOptions{ValidateCoords: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilesFound)
	assert.Equal(t, 2, res.RowsLoaded)
	assert.Equal(t, 1, res.RowsDropped, "lat=91 is out of range")
	require.Equal(t, 1, res.Table.Len())

	row := res.Table.Rows()[0]
	assert.Equal(t, "A", row.String("name"))
	assert.Equal(t, "hospital", row.String("location_type"))
	assert.Equal(t, "New Market", row.String("area"), "underscores become spaces")
	assert.Equal(t, "guwahati", row.String("city"))
	assert.Equal(t, "results_Hospital_New_Market_Guwahati.json", row.String("source_file"))
	assert.Equal(t, 26.1, row["lat"])
	assert.Equal(t, 91.7, row["lon"])
}

func TestConsolidate_UnfilteredKeepsInvalidCoords(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_atm_area_city.json",
		`[{"name":"B","lat":"91","lon":"10"}]`)

	res, err := Consolidate(dir, ConsolidateOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, 0, res.RowsDropped)
}

func TestConsolidate_BaselineColumnsGuaranteed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_atm_area_city.json", `[{"name":"A","lat":1,"lon":2}]`)

	res, err := Consolidate(dir, ConsolidateOptions{ValidateCoords: true})
	require.NoError(t, err)
	for _, col := range []string{"name", "formatted_address", "vicinity", "place_id", "rating", "user_ratings_total", "types", "lat", "lon", "location_type", "area", "city", "source_file"} {
		assert.True(t, res.Table.HasColumn(col), col)
	}
}

func TestConsolidate_MalformedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_atm_a_city.json", `{"results": [`)
	writeFixture(t, dir, "results_atm_b_city.json", `[{"name":"OK","lat":1,"lon":2}]`)

	res, err := Consolidate(dir, ConsolidateOptions{ValidateCoords: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesFound)
	assert.Equal(t, 1, res.FilesSkipped)
	assert.Equal(t, 1, res.Table.Len())
}

func TestConsolidate_NoFiles(t *testing.T) {
	_, err := Consolidate(t.TempDir(), ConsolidateOptions{ValidateCoords: true})
	assert.ErrorIs(t, err, ErrNoResultFiles)
}

func TestConsolidate_NoValidRows(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_atm_a_city.json", `[{"name":"X"}]`)

	_, err := Consolidate(dir, ConsolidateOptions{ValidateCoords: true})
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestConsolidate_RowOrderFollowsSortedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "results_b_a_city.json", `[{"name":"second","lat":1,"lon":2}]`)
	writeFixture(t, dir, "results_a_a_city.json", `[{"name":"first","lat":1,"lon":2}]`)

	res, err := Consolidate(dir, ConsolidateOptions{ValidateCoords: true})
	require.NoError(t, err)
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "first", res.Table.Rows()[0].String("name"))
	assert.Equal(t, "second", res.Table.Rows()[1].String("name"))
}

func TestCountBy(t *testing.T) {
	tbl := NewTable()
	tbl.Append(Row{"city": "guwahati", "location_type": "hospital"})
	tbl.Append(Row{"city": "guwahati", "location_type": "hospital"})
	tbl.Append(Row{"city": "dispur", "location_type": "atm"})
	tbl.Append(Row{"city": "guwahati", "location_type": "atm"})

	counts := CountBy(tbl, "city", "location_type")
	require.Len(t, counts, 3)
	assert.Equal(t, Count{Key: []string{"dispur", "atm"}, N: 1}, counts[0])
	assert.Equal(t, Count{Key: []string{"guwahati", "atm"}, N: 1}, counts[1])
	assert.Equal(t, Count{Key: []string{"guwahati", "hospital"}, N: 2}, counts[2])

	lines := SummaryLines(counts)
	assert.Equal(t, []string{
		"dispur atm = 1",
		"guwahati atm = 1",
		"guwahati hospital = 2",
	}, lines)
}
