package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
)

const importHeader = "product_name,product_description,category_name,category_description,price,customer_name,rating,review_text\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sqliteURL(t *testing.T) string {
	t.Helper()
	return "sqlite:" + filepath.Join(t.TempDir(), "catalog.db")
}

func TestImportCommand(t *testing.T) {
	db := sqliteURL(t)
	file := writeFile(t, "catalog.csv", importHeader+
		"iPhone,,Electronics,,999.99,Ann,5,great\n"+
		"iPhone,,Electronics,,999.99,Bob,4,ok\n")

	out, err := run(t, "import", file, "--db", db)
	require.NoError(t, err)

	var result core.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, "catalog.csv", result.FileName)
	assert.Equal(t, 1, result.CategoriesAdded)
	assert.Equal(t, 1, result.ProductsAdded)
	assert.Equal(t, 2, result.ReviewsAdded)

	out, err = run(t, "stats", "--db", db)
	require.NoError(t, err)
	var counts database.CatalogCounts
	require.NoError(t, json.Unmarshal([]byte(out), &counts), out)
	assert.Equal(t, database.CatalogCounts{Categories: 1, Products: 1, Reviews: 2}, counts)

	// The source file belongs to the user and is never removed.
	_, statErr := os.Stat(file)
	assert.NoError(t, statErr)
}

func TestImportCommand_NothingImported(t *testing.T) {
	file := writeFile(t, "catalog.csv", importHeader+"iPhone,,,,,,,\n")

	out, err := run(t, "import", file, "--db", sqliteURL(t))

	require.ErrorIs(t, err, errNothingImported)
	var result core.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Len(t, result.RowErrors, 1)
}

func TestImportCommand_FatalError(t *testing.T) {
	file := writeFile(t, "catalog.csv", importHeader)

	out, err := run(t, "import", file, "--db", sqliteURL(t))

	require.ErrorIs(t, err, core.ErrEmptyBatch)
	assert.Contains(t, err.Error(), "IMP003")
	assert.Empty(t, out)
}

func TestImportCommand_ContentTypeFlag(t *testing.T) {
	file := writeFile(t, "export.dat", importHeader+"iPhone,,Electronics,,999.99,Ann,5,\n")

	_, err := run(t, "import", file, "--db", sqliteURL(t), "--content-type", "text/plain")
	require.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = run(t, "import", file, "--db", sqliteURL(t), "--content-type", "text/csv")
	require.NoError(t, err)
}

func TestImportCommand_RequiresDatabase(t *testing.T) {
	file := writeFile(t, "catalog.csv", importHeader)

	_, err := run(t, "import", file)

	require.ErrorIs(t, err, errNoDatabase)
}

func TestTemplateCommand(t *testing.T) {
	out, err := run(t, "template")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(core.TemplateColumns, ","), lines[0])

	out, err = run(t, "template", "--format", "json")
	require.NoError(t, err)
	var tmpl core.Template
	require.NoError(t, json.Unmarshal([]byte(out), &tmpl))
	assert.Len(t, tmpl.SampleData, 2)

	_, err = run(t, "template", "--format", "pdf")
	assert.Error(t, err)
}

func TestTemplateCommand_XLSXFileImports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")

	_, err := run(t, "template", "--format", "xlsx", "-o", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := f.GetRows(core.TemplateSheetName)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Len(t, rows, 3)

	_, err = run(t, "import", path, "--db", sqliteURL(t))
	require.NoError(t, err)
}

func TestSchemaCommand(t *testing.T) {
	db := sqliteURL(t)

	out, err := run(t, "schema", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema applied")

	// Applying twice is harmless.
	_, err = run(t, "schema", "--db", db)
	require.NoError(t, err)

	out, err = run(t, "schema", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS categories")
}
