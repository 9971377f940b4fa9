package diagnostic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsError(t *testing.T) {
	res := &Diagnostics{}
	require.NoError(t, res.Error())
	assert.True(t, res.IsValid())

	res.AddWarning("dtype_mismatch", "column b is not int", "testdata", "b")
	require.NoError(t, res.Error())
	assert.True(t, res.HasWarnings())

	res.AddError("relative_path", `path "a.csv" is not absolute`, "iris", "path")
	res.AddError("bad_dtype", `column "Species": unsupported`, "iris", "dtypes", "str")

	err := res.Error()
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Diagnostics.Errors, 2)
	assert.Empty(t, ve.Diagnostics.Warnings)
	assert.True(t, ve.HasCode("bad_dtype"))
	assert.False(t, ve.HasCode("missing_file"))
	assert.Equal(t,
		`validation failed: [iris] path: [relative_path] path "a.csv" is not absolute; `+
			`[iris] dtypes: [bad_dtype] column "Species": unsupported (did you mean str?)`,
		ve.Error())
}

func TestValidationErrorAttribute(t *testing.T) {
	ve := NewValidationError("not_natural", "expected a natural number", "", "")
	ve.Diagnostics.AddError("other", "already placed", "multi", "ncols")

	out := ve.Attribute("iris", "nrows")
	assert.Equal(t, "iris", out.Diagnostics.Errors[0].Dataset)
	assert.Equal(t, "nrows", out.Diagnostics.Errors[0].Field)
	assert.Equal(t, "multi", out.Diagnostics.Errors[1].Dataset)
	assert.Equal(t, "ncols", out.Diagnostics.Errors[1].Field)

	// the receiver is left untouched
	assert.Empty(t, ve.Diagnostics.Errors[0].Dataset)
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("loading iris: %w", NewValidationError("x", "y", "", ""))
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestMergeAndSeverity(t *testing.T) {
	a := &Diagnostics{}
	a.AddInfo("loaded", "150 rows", "iris", "")

	b := Diagnostics{}
	b.AddError("e", "m", "", "")
	b.AddWarning("w", "m", "", "")

	a.Merge(b)
	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Warnings, 1)
	assert.True(t, a.HasErrors())

	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
	assert.Equal(t, "[iris]: [loaded] 150 rows", a.Infos[0].String())
}
