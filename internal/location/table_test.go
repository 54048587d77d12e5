package location

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Greater(t, tbl.Len(), 30)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, tbl, again, "default table should be built once")
}

func TestResolve(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name         string
		department   string
		municipality string
		wantOK       bool
		wantMuni     string
	}{
		{"capital", "11", "001", true, "BOGOTÁ D.C."},
		{"antioquia", "05", "001", true, "MEDELLÍN"},
		{"secondary city", "76", "520", true, "PALMIRA"},
		{"unknown municipality", "05", "999", false, ""},
		{"unknown department", "00", "001", false, ""},
		{"empty", "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := tbl.Resolve(tt.department, tt.municipality)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMuni, ref.MunicipalityName)
			if ok {
				assert.Equal(t, tt.department, ref.DepartmentCode)
				assert.Equal(t, tt.municipality, ref.MunicipalityCode)
				assert.NotEmpty(t, ref.DepartmentName)
			}
		})
	}
}

func TestResolveNilTable(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Resolve("11", "001")
	assert.False(t, ok)
	assert.Zero(t, tbl.Len())
}

func TestLoadRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "short department code",
			yaml: "departments:\n  - code: \"5\"\n    name: X\n    municipalities: []\n",
			want: "2 digits",
		},
		{
			name: "alpha municipality code",
			yaml: "departments:\n  - code: \"05\"\n    name: X\n    municipalities:\n      - { code: \"0A1\", name: Y }\n",
			want: "3 digits",
		},
		{
			name: "duplicate pair",
			yaml: "departments:\n  - code: \"05\"\n    name: X\n    municipalities:\n      - { code: \"001\", name: Y }\n      - { code: \"001\", name: Z }\n",
			want: "duplicate",
		},
		{
			name: "not yaml",
			yaml: "departments: [",
			want: "parse location table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/divipola.yaml")
	assert.Error(t, err)
}
