package layer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestField_Kind(t *testing.T) {
	testCases := []struct {
		fieldType string
		expected  FieldKind
	}{
		{fieldType: "bool", expected: KindBool},
		{fieldType: "boolean", expected: KindBool},
		{fieldType: "Boolean", expected: KindBool},
		{fieldType: "int64", expected: KindInt64},
		{fieldType: "integer64", expected: KindInt64},
		{fieldType: "long", expected: KindInt64},
		{fieldType: "LongLong", expected: KindInt64},
		{fieldType: "string", expected: KindOther},
		{fieldType: "real", expected: KindOther},
		{fieldType: "int", expected: KindOther},
		{fieldType: "", expected: KindOther},
	}

	for _, tc := range testCases {
		t.Run(tc.fieldType, func(t *testing.T) {
			field := Field{Name: "f", Type: tc.fieldType}
			assert.Equal(t, tc.expected, field.Kind())
		})
	}
}

func TestMetadata_IsFileBacked(t *testing.T) {
	for _, provider := range []string{"ogr", "OGR", "spatialite", "gpkg"} {
		meta := Metadata{Provider: provider}
		assert.True(t, meta.IsFileBacked(), provider)
	}
	for _, provider := range []string{"postgres", "memory", "wfs", ""} {
		meta := Metadata{Provider: provider}
		assert.False(t, meta.IsFileBacked(), provider)
	}
}

func TestMetadata_BoolFields(t *testing.T) {
	meta := Metadata{
		Fields: []Field{
			{Name: "gid", Type: "int64"},
			{Name: "visible", Type: "bool"},
			{Name: "name", Type: "string"},
			{Name: "selected", Type: "boolean"},
		},
	}
	assert.Equal(t, []string{"visible", "selected"}, meta.BoolFields())

	empty := Metadata{Fields: []Field{{Name: "name", Type: "string"}}}
	assert.Nil(t, empty.BoolFields())
}

func TestMetadata_PrimaryKeyField(t *testing.T) {
	fields := []Field{
		{Name: "gid", Type: "int64"},
		{Name: "name", Type: "string"},
	}

	testCases := []struct {
		name     string
		meta     Metadata
		expected string
		ok       bool
	}{
		{
			name:     "File-backed integer key",
			meta:     Metadata{Provider: "ogr", PrimaryKey: intPtr(0), Fields: fields},
			expected: "gid",
			ok:       true,
		},
		{
			name: "Non file-backed provider",
			meta: Metadata{Provider: "postgres", PrimaryKey: intPtr(0), Fields: fields},
		},
		{
			name: "No primary key declared",
			meta: Metadata{Provider: "ogr", Fields: fields},
		},
		{
			name: "Index out of range",
			meta: Metadata{Provider: "ogr", PrimaryKey: intPtr(5), Fields: fields},
		},
		{
			name: "Negative index",
			meta: Metadata{Provider: "ogr", PrimaryKey: intPtr(-1), Fields: fields},
		},
		{
			name: "Key field is not a 64-bit integer",
			meta: Metadata{Provider: "ogr", PrimaryKey: intPtr(1), Fields: fields},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, ok := tc.meta.PrimaryKeyField()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, name)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := `provider: ogr
primary_key: 0
fields:
  - name: gid
    type: int64
  - name: is_active
    type: bool
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	meta, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ogr", meta.Provider)
	require.NotNil(t, meta.PrimaryKey)
	assert.Equal(t, 0, *meta.PrimaryKey)
	assert.Equal(t, []string{"is_active"}, meta.BoolFields())

	name, ok := meta.PrimaryKeyField()
	assert.True(t, ok)
	assert.Equal(t, "gid", name)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	content := `{
  "provider": "gpkg",
  "primary_key": 1,
  "fields": [
    {"name": "name", "type": "string"},
    {"name": "fid", "type": "longlong"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	meta, err := Load(path)
	require.NoError(t, err)

	name, ok := meta.PrimaryKeyField()
	assert.True(t, ok)
	assert.Equal(t, "fid", name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider: [broken"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Field without a name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.yaml")
		content := "provider: ogr\nfields:\n  - type: bool\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(path)
		assert.ErrorContains(t, err, "has no name")
	})
}
