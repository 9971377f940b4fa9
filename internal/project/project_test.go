package project

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
	"tabspec/internal/schema"
)

const irisCSV = `Sepal Length,Sepal Width,Petal Length,Petal Width,Species
5.1,3.5,1.4,0.2,setosa
4.9,3.0,1.4,0.2,setosa
4.9,3.0,1.4,0.2,setosa
7.0,3.2,4.7,1.4,versicolor
6.3,3.3,6.0,2.5,virginica
`

type fixture struct {
	store    *Store
	specfile string
	iris     string
	iris2    string
}

func setup(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	fx := fixture{
		store:    NewStore(filepath.Join(dir, "tabspec.conf")),
		specfile: filepath.Join(dir, "dictionary.yaml"),
		iris:     filepath.Join(dir, "iris.csv"),
		iris2:    filepath.Join(dir, "iris2.csv"),
	}

	require.NoError(t, os.WriteFile(fx.iris, []byte(irisCSV), 0o644))
	require.NoError(t, os.WriteFile(fx.iris2, []byte(irisCSV), 0o644))

	doc := fmt.Sprintf(`
iris:
  path: %[1]s
  delimiter: ","
  ncols: 5
  dtypes:
    Species: str
    Sepal Length: float
  column_rules:
    Species:
      unique_values: [setosa, virginica]
multi_iris:
  path: [%[1]s, %[2]s]
  delimiter: ","
  nrows: [2, 3]
  drop_duplicates: false
  dtypes:
    Species: str
`, fx.iris, fx.iris2)
	require.NoError(t, os.WriteFile(fx.specfile, []byte(doc), 0o644))
	require.NoError(t, fx.store.Add("demo", fx.specfile))

	return fx
}

func TestOpen(t *testing.T) {
	fx := setup(t)

	p, err := Open(fx.store, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name())
	assert.Equal(t, fx.specfile, p.Specfile())
	assert.Equal(t, []string{"iris", "multi_iris"}, p.DatasetNames())

	_, err = Open(fx.store, "nope")
	require.ErrorIs(t, err, ErrMissingProject)
}

func TestProject_Specs(t *testing.T) {
	fx := setup(t)

	p, err := Open(fx.store, "demo")
	require.NoError(t, err)

	specs, err := p.GetDatasetSpecs("iris")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"filepath_or_buffer": fx.iris,
		"sep":                ",",
		"dtype":              map[string]dtype.DType{"Species": dtype.Text, "Sepal Length": dtype.Float},
		"usecols":            []string{"Species", "Sepal Length"},
	}, specs)

	all, err := p.GetProjectSpecs()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["multi_iris"], 2)

	_, err = p.GetDatasetSpecs("irs")
	var ve *diagnostic.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"iris"}, ve.Diagnostics.Errors[0].Suggestions)
}

func TestProject_LoadDataset(t *testing.T) {
	fx := setup(t)

	p, err := Open(fx.store, "demo")
	require.NoError(t, err)

	frame, res, err := p.LoadDataset("iris")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Infos, 1)
	assert.Equal(t, "loaded", res.Infos[0].Code)
	assert.Equal(t, "iris", res.Infos[0].Dataset)
	assert.Equal(t, "3 of 5 rows kept after cleaning", res.Infos[0].Message)

	// versicolor is outside unique_values, the repeated setosa row is a duplicate
	species, ok := frame.Column("Species")
	require.True(t, ok)
	assert.Equal(t, []any{"setosa", "setosa", "virginica"}, species.Values)

	frame, _, err = p.LoadDataset("multi_iris")
	require.NoError(t, err)
	assert.Equal(t, 5, frame.NumRows())

	frames, all, err := p.LoadDatasets()
	require.NoError(t, err)
	assert.Len(t, frames, 2)
	assert.Len(t, all.Infos, 2)
}

func TestProject_SetDatasetSpecs(t *testing.T) {
	fx := setup(t)

	p, err := Open(fx.store, "demo")
	require.NoError(t, err)

	require.NoError(t, p.SetDatasetSpecs("iris", map[string]any{schema.KeyNrows: 1}, false))

	frame, _, err := p.LoadDataset("iris")
	require.NoError(t, err)
	assert.Equal(t, 1, frame.NumRows())

	// not persisted
	q, err := Open(fx.store, "demo")
	require.NoError(t, err)

	frame, _, err = q.LoadDataset("iris")
	require.NoError(t, err)
	assert.Equal(t, 3, frame.NumRows())
}

func TestProject_LoadDatasetWarnsOnColumnCount(t *testing.T) {
	fx := setup(t)

	p, err := Open(fx.store, "demo")
	require.NoError(t, err)
	require.NoError(t, p.SetDatasetSpecs("iris", map[string]any{schema.KeyNcols: 4}, false))

	_, res, err := p.LoadDataset("iris")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "column_count_mismatch", res.Warnings[0].Code)
	assert.Equal(t, "iris", res.Warnings[0].Dataset)
}

func TestStore_Datasets(t *testing.T) {
	fx := setup(t)

	spec := schema.Specification{schema.KeyPath: fx.iris, schema.KeyDelimiter: ","}
	require.NoError(t, fx.store.AddDataset("demo", "plain", spec))
	require.ErrorIs(t, fx.store.AddDataset("demo", "plain", spec), ErrDatasetExists)

	bad := schema.Specification{schema.KeyPath: "iris.csv", schema.KeyDelimiter: ","}
	require.True(t, diagnostic.IsValidationError(fx.store.AddDataset("demo", "bad", bad)))

	doc, err := fx.store.GetSchemaSpecs("demo", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"iris", "multi_iris", "plain"}, doc.Names())

	require.NoError(t, fx.store.SetSchemaSpecs("demo", "plain", map[string]any{schema.KeyDelimiter: "|"}))

	doc, err = fx.store.GetSchemaSpecs("demo", "plain")
	require.NoError(t, err)
	assert.Equal(t, "|", doc["plain"][schema.KeyDelimiter])
	assert.Equal(t, fx.iris, doc["plain"][schema.KeyPath])

	removed, err := fx.store.RemoveDataset("demo", "plain")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = fx.store.RemoveDataset("demo", "plain")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = fx.store.GetSchemaSpecs("demo", "plain")
	require.Error(t, err)

	_, err = fx.store.GetSchemaSpecs("nope", "")
	require.ErrorIs(t, err, ErrMissingProject)
}
