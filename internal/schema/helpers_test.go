package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabspec/internal/diagnostic"
)

const irisCSV = `Sepal Length,Sepal Width,Petal Length,Petal Width,Species
5.1,3.5,1.4,0.2,setosa
7.0,3.2,4.7,1.4,versicolor
6.3,3.3,6.0,2.5,virginica
`

// writeFile writes content to name inside dir and returns the absolute path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	return p
}

func requireCode(t *testing.T, err error, code string) *diagnostic.ValidationError {
	t.Helper()

	var ve *diagnostic.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.HasCode(code), "expected code %q, got %v", code, ve)

	return ve
}
