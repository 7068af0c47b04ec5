package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableIdent(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"bare", "pois", false},
		{"schema qualified", "public.skytron_api_pointofinterests", false},
		{"digits and underscore", "staging_2.poi_v2", false},
		{"empty", "", true},
		{"two dots", "a.b.c", true},
		{"semicolon injection", "pois; DROP TABLE pois", true},
		{"quoted", `"pois"`, true},
		{"space", "public .pois", true},
		{"hyphen", "poi-staging", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTableIdent(tt.table)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid table identifier")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, got)
		})
	}
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.pois", `"public"."pois"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := QuoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
