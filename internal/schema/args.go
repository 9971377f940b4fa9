package schema

import (
	"maps"
	"slices"

	"tabspec/internal/dtype"
)

// Parser argument keys, as handed to the table reader.
const (
	ArgFilepathOrBuffer = "filepath_or_buffer"
	ArgSep              = "sep"
	ArgDtype            = "dtype"
	ArgUsecols          = "usecols"
	ArgNrows            = "nrows"
	ArgParseDates       = "parse_dates"
)

// ParserArgs are the canonical arguments for reading one file of a dataset.
type ParserArgs struct {
	FilepathOrBuffer string                 `yaml:"filepath_or_buffer" json:"filepath_or_buffer"`
	Sep              string                 `yaml:"sep" json:"sep"`
	Dtype            map[string]dtype.DType `yaml:"dtype" json:"dtype"`
	Usecols          []string               `yaml:"usecols" json:"usecols"`
	// Nrows caps the rows read; 0 means the whole file.
	Nrows      int      `yaml:"nrows,omitempty" json:"nrows,omitempty"`
	ParseDates []string `yaml:"parse_dates,omitempty" json:"parse_dates,omitempty"`
}

// ToMap renders the arguments as a keyword mapping, omitting nrows when
// unset and parse_dates when empty.
func (a ParserArgs) ToMap() map[string]any {
	out := map[string]any{
		ArgFilepathOrBuffer: a.FilepathOrBuffer,
		ArgSep:              a.Sep,
		ArgDtype:            maps.Clone(a.Dtype),
		ArgUsecols:          slices.Clone(a.Usecols),
	}

	if a.Nrows > 0 {
		out[ArgNrows] = a.Nrows
	}

	if len(a.ParseDates) > 0 {
		out[ArgParseDates] = slices.Clone(a.ParseDates)
	}

	return out
}

// Clone returns a deep copy.
func (a ParserArgs) Clone() ParserArgs {
	a.Dtype = maps.Clone(a.Dtype)
	a.Usecols = slices.Clone(a.Usecols)
	a.ParseDates = slices.Clone(a.ParseDates)

	return a
}

func cloneArgs(in []ParserArgs) []ParserArgs {
	out := make([]ParserArgs, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}

	return out
}
