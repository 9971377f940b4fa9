package schema_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabspec/internal/dtype"
	"tabspec/internal/schema"
)

func TestParse_KeepsDtypeOrder(t *testing.T) {
	doc, err := schema.Parse([]byte(`
iris:
  path: /data/iris.csv
  delimiter: ","
  dtypes:
    Species: str
    Sepal Length: float
    Petal Width: nonsense
`))
	require.NoError(t, err)

	pairs, ok := doc["iris"][schema.KeyDtypes].(dtype.Pairs)
	require.True(t, ok)
	require.Len(t, pairs, 3)
	assert.Equal(t, "Species", pairs[0].Key)
	assert.Equal(t, "Sepal Length", pairs[1].Key)
	assert.Equal(t, "nonsense", pairs[2].Value)
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	doc, err := schema.Parse(nil)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc.Names())

	_, err = schema.Parse([]byte("iris:\n"))
	require.Error(t, err)

	_, err = schema.Parse([]byte("iris: [1, 2]\n"))
	require.Error(t, err)

	_, err = schema.Parse([]byte("iris: {path: [\n"))
	require.Error(t, err)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	doc, err := schema.Parse([]byte(`
zoo:
  path: [/a.csv, /b.csv]
  delimiter: "\t"
  nrows: [1, 2]
  dtypes:
    z: int
    a: date
iris:
  path: /iris.csv
  sep: ","
`))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, schema.WriteFile(doc, path))

	loaded, err := schema.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
	assert.Equal(t, []string{"iris", "zoo"}, loaded.Names())
}

func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")

	// a missing document starts empty
	require.NoError(t, schema.UpdateFile(path, func(doc schema.Document) error {
		doc["iris"] = schema.Specification{schema.KeyPath: "/iris.csv", schema.KeyDelimiter: ","}
		return nil
	}))

	require.NoError(t, schema.UpdateFile(path, func(doc schema.Document) error {
		doc["tips"] = schema.Specification{schema.KeyPath: "/tips.csv", schema.KeyDelimiter: ";"}
		return nil
	}))

	doc, err := schema.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"iris", "tips"}, doc.Names())
	assert.Equal(t, ";", doc["tips"][schema.KeyDelimiter])

	_, err = schema.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
