// Package schema reads and writes specification documents and turns one
// dataset's specification into validated parser arguments.
//
// A specification document maps dataset names to specifications:
//
//	iris:
//	  path: /data/iris.csv
//	  delimiter: ","
//	  nrows: 150
//	  dtypes:
//	    Species: str
//	    Sepal Length: float
//	multi_iris:
//	  path: [/data/iris.csv, /data/iris2.csv]
//	  delimiter: ","
//	  nrows: [150, 150]
//	activity:
//	  path: /data/person_activity.tsv
//	  delimiter: "\t"
//	  dtypes:
//	    date: date
//	    x: float
//
// # Fields
//
//   - path: absolute, existing file, or a non-empty list of them (multi-file)
//   - delimiter (alias sep): a single character
//   - dtypes: column name -> one of int, float, str, date
//   - nrows, ncols: natural numbers; lists parallel to path in multi-file mode
//   - column_rules, drop_duplicates: cleaning rules, see package clean
//
// # Derived parser arguments
//
// Date-typed columns never reach the reader as a dtype: they are removed from
// dtype and listed in parse_dates, while still appearing in usecols. nrows is
// omitted when not declared, and parse_dates when empty.
//
// # Construction
//
// A Validator is built from a specification mapping, from a document path plus
// dataset name, or from both (the mapping is read, the document is the write
// target for SetParserArgs). A document path without a name, or a name
// without a document path, is a ValidationError.
package schema
