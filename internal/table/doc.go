// Package table reads delimited files into an in-memory Frame as directed by
// schema.ParserArgs, concatenates multi-file datasets and exports frames to
// parquet.
//
// Files are parsed by the arrow CSV reader with every requested column read
// as text; values are then converted to the declared types. A column that
// does not convert is kept as text and reported as a dtype_mismatch warning
// so that a load never fails on content alone. Rows that do not parse under
// the delimiter and quoting, or whose field count differs from the header,
// are dropped and reported as malformed_line warnings.
package table
