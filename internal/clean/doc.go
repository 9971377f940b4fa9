// Package clean applies the column_rules of a dataset specification to a
// loaded table.Frame.
//
// Column rules run in a fixed order: unique_values, min/max, drop_duplicates,
// drop_na, regex, converters, postprocessors. Rules that drop values drop the
// whole row. Once every column is cleaned, duplicate rows are removed unless
// the specification sets drop_duplicates to false.
//
// Converters and postprocessors are expr-lang expressions. A converter sees
// the column as `column` and returns a list of the same length: a list of
// booleans filters rows, anything else replaces the column. A postprocessor
// sees one non-missing cell as `value` and returns its replacement.
//
//	column_rules:
//	  Species:
//	    unique_values: [setosa, versicolor]
//	    postprocessors: ["upper(value)"]
//	  Sepal Length:
//	    min: 4.5
//	    converters: ["map(column, # != 5.0)"]
package clean
