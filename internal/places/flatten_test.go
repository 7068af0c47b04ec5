package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_NestedMaps(t *testing.T) {
	row := Flatten(map[string]any{
		"name": "City Hospital",
		"geometry": map[string]any{
			"location": map[string]any{"lat": 26.14, "lng": 91.73},
		},
	})

	assert.Equal(t, "City Hospital", row["name"])
	assert.Equal(t, 26.14, row["geometry.location.lat"])
	assert.Equal(t, 91.73, row["geometry.location.lng"])
	assert.False(t, row.Has("geometry"))
}

func TestFlatten_ListsStayOneColumn(t *testing.T) {
	row := Flatten(map[string]any{
		"types": []any{"hospital", "health"},
	})
	assert.Equal(t, `["hospital","health"]`, row["types"])
}

func TestFlatten_ScalarsPreserved(t *testing.T) {
	row := Flatten(map[string]any{
		"rating":   4.5,
		"open":     true,
		"vicinity": "",
		"plus":     nil,
	})
	assert.Equal(t, 4.5, row["rating"])
	assert.Equal(t, true, row["open"])
	assert.Equal(t, "", row["vicinity"])
	assert.True(t, row.Has("vicinity"), "present empty string is not missing")
	assert.True(t, row.Has("plus"))
}

func TestTable_UnionColumnsAndMissing(t *testing.T) {
	tbl := NewTable()
	tbl.Append(Row{"a": "1", "b": "2"})
	tbl.Append(Row{"b": "3", "c": "4"})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())

	first, second := tbl.Rows()[0], tbl.Rows()[1]
	assert.True(t, first.Has("a"))
	assert.False(t, first.Has("c"), "row lacking a column carries the missing marker")
	assert.False(t, second.Has("a"))
	assert.Equal(t, "", second.String("a"))
}

func TestRow_StringRendering(t *testing.T) {
	r := Row{"f": 26.1445, "i": 91.0, "b": false, "s": "text"}
	assert.Equal(t, "26.1445", r.String("f"))
	assert.Equal(t, "91", r.String("i"))
	assert.Equal(t, "false", r.String("b"))
	assert.Equal(t, "text", r.String("s"))
	assert.Equal(t, "", r.String("missing"))
}
