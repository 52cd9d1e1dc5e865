package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmlfix/qmlfix/internal/layer"
)

func testMetadata() *layer.Metadata {
	return &layer.Metadata{
		Provider:   "ogr",
		PrimaryKey: intPtr(0),
		Fields: []layer.Field{
			{Name: "gid", Type: "int64"},
			{Name: "is_active", Type: "bool"},
		},
	}
}

func TestFixSingleFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("File needing a rewrite", func(t *testing.T) {
		path := writeFile(t, dir, "style.qml",
			`<qgis><renderer-v2 type="RuleRenderer"><rules><rule filter="gid = 1"/></rules></renderer-v2></qgis>`)

		result, text := fixSingleFile(testMetadata(), path)
		assert.Empty(t, result.Error)
		assert.True(t, result.Changed)
		assert.Contains(t, text, `filter="@id = 1"`)
	})

	t.Run("File already correct", func(t *testing.T) {
		content := `<qgis><renderer-v2 type="singleSymbol"/></qgis>`
		path := writeFile(t, dir, "clean.qml", content)

		result, text := fixSingleFile(testMetadata(), path)
		assert.Empty(t, result.Error)
		assert.False(t, result.Changed)
		assert.Equal(t, content, text)
	})

	t.Run("Unreadable file", func(t *testing.T) {
		result, text := fixSingleFile(testMetadata(), filepath.Join(dir, "missing.qml"))
		assert.NotEmpty(t, result.Error)
		assert.Empty(t, text)
	})
}

func TestFixCommand_Stdout(t *testing.T) {
	dir := t.TempDir()
	fieldsPath := writeFile(t, dir, "fields.yaml",
		"provider: ogr\nprimary_key: 0\nfields:\n  - name: gid\n    type: int64\n")
	stylePath := writeFile(t, dir, "style.qml",
		`<qgis><renderer-v2 type="RuleRenderer"><rules><rule filter="gid = 1"/></rules></renderer-v2></qgis>`)

	out := runCommand(t, "fix", stylePath, "--fields", fieldsPath)
	assert.Contains(t, out, `filter="@id = 1"`)

	// Stdout mode never touches the input file.
	data, err := os.ReadFile(stylePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `filter="gid = 1"`)
}

func TestFixCommand_Write(t *testing.T) {
	dir := t.TempDir()
	fieldsPath := writeFile(t, dir, "fields.yaml",
		"provider: ogr\nprimary_key: 0\nfields:\n  - name: gid\n    type: int64\n")
	stylePath := writeFile(t, dir, "style.qml",
		`<qgis><renderer-v2 type="RuleRenderer"><rules><rule filter="gid = 1"/></rules></renderer-v2></qgis>`)

	runCommand(t, "fix", stylePath, "--fields", fieldsPath, "--write")

	data, err := os.ReadFile(stylePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `filter="@id = 1"`)
}

func TestFixCommand_OutFile(t *testing.T) {
	dir := t.TempDir()
	fieldsPath := writeFile(t, dir, "fields.yaml",
		"provider: ogr\nprimary_key: 0\nfields:\n  - name: gid\n    type: int64\n")
	content := `<qgis><renderer-v2 type="singleSymbol"/></qgis>`
	stylePath := writeFile(t, dir, "style.qml", content)
	outPath := filepath.Join(dir, "out.qml")

	runCommand(t, "fix", stylePath, "--fields", fieldsPath, "--out", outPath)

	// An unchanged document is still written to the requested output.
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}
