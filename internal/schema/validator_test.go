package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabspec/internal/dtype"
)

func irisDocument(t *testing.T) (specfile, iris, iris2 string) {
	t.Helper()

	dir := t.TempDir()
	iris = writeFile(t, dir, "iris.csv", irisCSV)
	iris2 = writeFile(t, dir, "iris2.csv", irisCSV)
	activity := writeFile(t, dir, "person_activity.tsv", "sequence_name\ttag\tdate\tx\n")

	doc := fmt.Sprintf(`
iris:
  path: %[1]s
  delimiter: ","
  nrows: 150
  dtypes:
    Species: str
    Sepal Length: float
person_activity:
  path: %[3]s
  delimiter: "\t"
  nrows: 100
  dtypes:
    sequence_name: str
    tag: str
    date: date
    x: float
multi_iris:
  path: [%[1]s, %[2]s]
  delimiter: ","
  nrows: [10, 20]
  dtypes:
    Species: str
`, iris, iris2, activity)

	specfile = writeFile(t, dir, "dictionary.yaml", doc)

	return specfile, iris, iris2
}

func TestParserArgs_Iris(t *testing.T) {
	specfile, iris, _ := irisDocument(t)

	v, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)
	assert.False(t, v.IsMultifile())

	args, err := v.ParserArgs()
	require.NoError(t, err)
	require.Len(t, args, 1)

	assert.Equal(t, ParserArgs{
		FilepathOrBuffer: iris,
		Sep:              ",",
		Dtype:            map[string]dtype.DType{"Species": dtype.Text, "Sepal Length": dtype.Float},
		Usecols:          []string{"Species", "Sepal Length"},
		Nrows:            150,
	}, args[0])

	dict, err := v.ToDict()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"filepath_or_buffer": iris,
		"sep":                ",",
		"dtype":              map[string]dtype.DType{"Species": dtype.Text, "Sepal Length": dtype.Float},
		"usecols":            []string{"Species", "Sepal Length"},
		"nrows":              150,
	}, dict)
}

func TestParserArgs_DatesMoveToParseDates(t *testing.T) {
	specfile, _, _ := irisDocument(t)

	v, err := FromSpecfile(specfile, "person_activity")
	require.NoError(t, err)

	args, err := v.ParserArgs()
	require.NoError(t, err)
	require.Len(t, args, 1)

	assert.Equal(t, "\t", args[0].Sep)
	assert.Equal(t, []string{"date"}, args[0].ParseDates)
	assert.NotContains(t, args[0].Dtype, "date")
	assert.Equal(t, []string{"sequence_name", "tag", "date", "x"}, args[0].Usecols)

	// the declared mapping still carries the date column
	cols, err := v.Dtypes()
	require.NoError(t, err)
	typ, ok := cols.Lookup("date")
	require.True(t, ok)
	assert.Equal(t, dtype.Date, typ)
}

func TestParserArgs_OnlyDateColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dates.csv", "date\n2015-01-01\n")

	v, err := FromDict(Specification{
		KeyPath:      path,
		KeyDelimiter: ",",
		KeyDtypes:    map[string]any{"date": "date"},
	})
	require.NoError(t, err)

	args, err := v.ParserArgs()
	require.NoError(t, err)
	assert.Empty(t, args[0].Dtype)
	assert.Equal(t, []string{"date"}, args[0].ParseDates)
	assert.Equal(t, []string{"date"}, args[0].Usecols)

	m := args[0].ToMap()
	assert.NotContains(t, m, ArgNrows)
	assert.Equal(t, []string{"date"}, m[ArgParseDates])
}

func TestParserArgs_Multifile(t *testing.T) {
	specfile, iris, iris2 := irisDocument(t)

	v, err := FromSpecfile(specfile, "multi_iris")
	require.NoError(t, err)
	assert.True(t, v.IsMultifile())
	assert.Equal(t, []string{iris, iris2}, v.Paths())
	assert.Equal(t, []int{10, 20}, v.Nrows())

	args, err := v.ParserArgs()
	require.NoError(t, err)
	require.Len(t, args, 2)

	assert.Equal(t, iris, args[0].FilepathOrBuffer)
	assert.Equal(t, 10, args[0].Nrows)
	assert.Equal(t, iris2, args[1].FilepathOrBuffer)
	assert.Equal(t, 20, args[1].Nrows)

	dict, err := v.ToDict()
	require.NoError(t, err)
	require.IsType(t, []map[string]any{}, dict)
	assert.Len(t, dict, 2)
}

func TestParserArgs_ScalarNrowsAppliesToEveryFile(t *testing.T) {
	_, iris, iris2 := irisDocument(t)

	v, err := FromDict(Specification{
		KeyPath:      []any{iris, iris2},
		KeyDelimiter: ",",
		KeyNrows:     3,
	})
	require.NoError(t, err)

	args, err := v.ParserArgs()
	require.NoError(t, err)
	assert.Equal(t, 3, args[0].Nrows)
	assert.Equal(t, 3, args[1].Nrows)
}

func TestParserArgs_Idempotent(t *testing.T) {
	specfile, _, _ := irisDocument(t)

	for _, name := range []string{"iris", "person_activity", "multi_iris"} {
		v, err := FromSpecfile(specfile, name)
		require.NoError(t, err)

		first, err := v.ParserArgs()
		require.NoError(t, err)

		// mutating a returned value must not leak into the cache
		first[0].Usecols = append(first[0].Usecols, "bogus")
		first[0].Dtype["bogus"] = dtype.Integer

		second, err := v.ParserArgs()
		require.NoError(t, err)

		third, err := v.ParserArgs()
		require.NoError(t, err)
		assert.Equal(t, second, third)
		assert.NotContains(t, second[0].Usecols, "bogus")
	}
}

func TestConstruct_RequiredFields(t *testing.T) {
	_, iris, _ := irisDocument(t)

	_, err := FromDict(Specification{KeyDelimiter: ","})
	requireCode(t, err, "missing_field")

	_, err = FromDict(Specification{KeyPath: iris})
	ve := requireCode(t, err, "missing_field")
	assert.Equal(t, KeyDelimiter, ve.Diagnostics.Errors[0].Field)

	_, err = FromDict(Specification{})
	ve = requireCode(t, err, "missing_field")
	assert.Len(t, ve.Diagnostics.Errors, 2)
}

func TestConstruct_RelativePath(t *testing.T) {
	_, err := New(Options{
		Specification: Specification{KeyPath: "testdata/iris.csv", KeyDelimiter: ","},
		Name:          "iris",
	})
	ve := requireCode(t, err, "relative_path")
	assert.Equal(t, "iris", ve.Diagnostics.Errors[0].Dataset)
	assert.Equal(t, KeyPath, ve.Diagnostics.Errors[0].Field)

	_, err = FromDict(Specification{KeyPath: []any{"a.csv", "b.csv"}, KeyDelimiter: ","})
	requireCode(t, err, "relative_path")
}

func TestConstruct_BadCounts(t *testing.T) {
	_, iris, iris2 := irisDocument(t)

	_, err := FromDict(Specification{KeyPath: iris, KeyDelimiter: ",", KeyNrows: 0})
	requireCode(t, err, "not_natural")

	_, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: ",", KeyNcols: -1})
	requireCode(t, err, "not_natural")

	_, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: ",", KeyNrows: []any{10, 20}})
	requireCode(t, err, "length_mismatch")

	_, err = FromDict(Specification{KeyPath: []any{iris, iris2}, KeyDelimiter: ",", KeyNrows: []any{10}})
	requireCode(t, err, "length_mismatch")
}

func TestConstruct_Delimiter(t *testing.T) {
	_, iris, _ := irisDocument(t)

	v, err := FromDict(Specification{KeyPath: iris, KeySep: ";"})
	require.NoError(t, err)
	assert.Equal(t, ";", v.Delimiter())

	v, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: `\t`})
	require.NoError(t, err)
	assert.Equal(t, "\t", v.Delimiter())

	_, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: ",", KeySep: ";"})
	requireCode(t, err, "conflicting_fields")

	_, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: ",,"})
	requireCode(t, err, "bad_delimiter")

	_, err = FromDict(Specification{KeyPath: iris, KeyDelimiter: 1})
	requireCode(t, err, "bad_delimiter")
}

func TestParserArgs_BadDtypeFailsLazily(t *testing.T) {
	_, iris, _ := irisDocument(t)

	v, err := FromDict(Specification{
		KeyPath:      iris,
		KeyDelimiter: ",",
		KeyDtypes:    map[string]any{"Species": "random_string", "Sepal Length": "float"},
	})
	require.NoError(t, err)

	_, err = v.ParserArgs()
	requireCode(t, err, "bad_dtype")

	// still failing on a second call
	_, err = v.ParserArgs()
	requireCode(t, err, "bad_dtype")

	require.NoError(t, v.SetDtypes(map[string]any{"Species": "str"}))

	args, err := v.ParserArgs()
	require.NoError(t, err)
	assert.Equal(t, []string{"Species"}, args[0].Usecols)
}

func TestConstruct_Modes(t *testing.T) {
	specfile, iris, _ := irisDocument(t)

	_, err := New(Options{Specfile: specfile})
	requireCode(t, err, "missing_name")

	_, err = New(Options{Name: "iris"})
	requireCode(t, err, "missing_specfile")

	_, err = New(Options{})
	requireCode(t, err, "missing_specification")

	_, err = FromSpecfile(specfile, "irsi")
	ve := requireCode(t, err, "unknown_dataset")
	assert.Equal(t, []string{"iris"}, ve.Diagnostics.Errors[0].Suggestions)

	// mapping and specfile: the mapping is read, the file is kept for writes
	v, err := New(Options{
		Specification: Specification{KeyPath: iris, KeyDelimiter: "|"},
		Specfile:      specfile,
		Name:          "iris",
	})
	require.NoError(t, err)
	assert.Equal(t, "|", v.Delimiter())
	assert.Equal(t, specfile, v.Specfile())
}

func TestSetters_InvalidateDerived(t *testing.T) {
	specfile, iris, iris2 := irisDocument(t)

	v, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)

	names, err := v.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Species", "Sepal Length"}, names)

	require.NoError(t, v.SetDtypes(dtype.Columns{{Name: "when", Type: dtype.Date}}))

	names, err = v.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"when"}, names)

	require.NoError(t, v.SetNrows(nil))
	require.NoError(t, v.SetDelimiter(";"))
	require.NoError(t, v.SetPath([]string{iris, iris2}))

	args, err := v.ParserArgs()
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.True(t, v.IsMultifile())
	assert.Zero(t, args[0].Nrows)
	assert.Equal(t, ";", args[1].Sep)
	assert.Equal(t, []string{"when"}, args[1].ParseDates)

	require.NoError(t, v.SetNrows([]int{1, 2, 3}))
	_, err = v.ParserArgs()
	requireCode(t, err, "length_mismatch")

	require.NoError(t, v.SetNrows([]int{1, 2}))
	args, err = v.ParserArgs()
	require.NoError(t, err)
	assert.Equal(t, 2, args[1].Nrows)
}

func TestSetters_RejectOnAssignment(t *testing.T) {
	specfile, iris, _ := irisDocument(t)

	v, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)

	requireCode(t, v.SetPath("iris.csv"), "relative_path")
	requireCode(t, v.SetPath("/foo/bar"), "missing_file")
	requireCode(t, v.SetNrows(0), "not_natural")
	requireCode(t, v.SetNcols([]any{0, 1}), "not_natural")
	requireCode(t, v.SetDelimiter(""), "bad_delimiter")
	requireCode(t, v.SetDtypes(map[string]any{"bar": "foo"}), "bad_dtype")

	// nothing changed
	assert.Equal(t, []string{iris}, v.Paths())
	assert.Equal(t, []int{150}, v.Nrows())

	args, err := v.ParserArgs()
	require.NoError(t, err)
	assert.Equal(t, 150, args[0].Nrows)
}

func TestSetParserArgs(t *testing.T) {
	specfile, _, iris2 := irisDocument(t)

	v, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)

	require.NoError(t, v.SetParserArgs(map[string]any{
		ArgFilepathOrBuffer: iris2,
		ArgDtype:            map[string]any{"Sepal Length": "str"},
	}, false))

	args, err := v.ParserArgs()
	require.NoError(t, err)
	assert.Equal(t, iris2, args[0].FilepathOrBuffer)
	assert.Equal(t, map[string]dtype.DType{"Sepal Length": dtype.Text}, args[0].Dtype)

	// on disk nothing moved
	doc, err := LoadFile(specfile)
	require.NoError(t, err)
	assert.NotEqual(t, iris2, doc["iris"][KeyPath])

	err = v.SetParserArgs(map[string]any{ArgUsecols: []string{"a"}}, false)
	requireCode(t, err, "derived_field")

	// a failing update is not partially applied
	err = v.SetParserArgs(map[string]any{KeyDelimiter: ";", KeyNrows: 0}, false)
	requireCode(t, err, "not_natural")
	assert.Equal(t, ",", v.Delimiter())
}

func TestSetParserArgs_WriteToFile(t *testing.T) {
	specfile, iris, _ := irisDocument(t)

	before, err := LoadFile(specfile)
	require.NoError(t, err)

	v, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)
	require.NoError(t, v.SetParserArgs(map[string]any{KeyDelimiter: "|"}, true))

	after, err := LoadFile(specfile)
	require.NoError(t, err)

	assert.Equal(t, "|", after["iris"][KeyDelimiter])
	assert.Equal(t, iris, after["iris"][KeyPath])
	assert.Equal(t, 150, after["iris"][KeyNrows])
	assert.Equal(t, before["iris"][KeyDtypes], after["iris"][KeyDtypes])
	assert.Equal(t, before["person_activity"], after["person_activity"])
	assert.Equal(t, before["multi_iris"], after["multi_iris"])

	reread, err := FromSpecfile(specfile, "iris")
	require.NoError(t, err)
	assert.Equal(t, "|", reread.Delimiter())
}

func TestSetParserArgs_WriteWithoutSpecfile(t *testing.T) {
	_, iris, _ := irisDocument(t)

	v, err := FromDict(Specification{KeyPath: iris, KeyDelimiter: ","})
	require.NoError(t, err)

	err = v.SetParserArgs(map[string]any{KeyDelimiter: "|"}, true)
	requireCode(t, err, "no_specfile")
}
