package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tabspec/internal/common"
	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
	"tabspec/internal/schema"
)

// ErrMissingColumn is returned when a requested column is absent from a file.
var ErrMissingColumn = errors.New("column not found")

// DefaultNullValues are the cell values read as missing.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

type readOptions struct {
	mem        memory.Allocator
	chunk      int
	ncols      int
	nullValues []string
	logger     *slog.Logger
}

// Option configures Read.
type Option func(*readOptions)

// WithAllocator sets the arrow allocator used while parsing.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *readOptions) { o.mem = mem }
}

// WithChunkSize sets the number of rows parsed per arrow record.
func WithChunkSize(n int) Option {
	return func(o *readOptions) {
		if n > 0 {
			o.chunk = n
		}
	}
}

// WithNcols sets the expected column count of the file. A different count is
// reported as a column_count_mismatch warning.
func WithNcols(n int) Option {
	return func(o *readOptions) { o.ncols = n }
}

// WithNullValues replaces DefaultNullValues.
func WithNullValues(values ...string) Option {
	return func(o *readOptions) { o.nullValues = values }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *readOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *readOptions {
	o := &readOptions{
		mem:        memory.NewGoAllocator(),
		chunk:      1024,
		nullValues: DefaultNullValues,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Read reads one file as described by args. The returned diagnostics hold
// warnings about the content; they are also logged.
func Read(args schema.ParserArgs, opts ...Option) (*Frame, *diagnostic.Diagnostics, error) {
	o := newOptions(opts)
	res := &diagnostic.Diagnostics{}
	path := args.FilepathOrBuffer

	comma, size := utf8.DecodeRuneInString(args.Sep)
	if size == 0 || size != len(args.Sep) {
		return nil, nil, fmt.Errorf("invalid separator %q", args.Sep)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	header, body, malformed, err := scan(file, comma)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	for _, m := range malformed {
		res.AddWarning("malformed_line", fmt.Sprintf("%s: line %d skipped: %s", path, m.line, m.reason), "", "")
	}

	if o.ncols > 0 && len(header) != o.ncols {
		res.AddWarning("column_count_mismatch",
			fmt.Sprintf("%s has %d columns, %d declared", path, len(header), o.ncols), "", schema.KeyNcols)
	}

	usecols := common.Dedup(args.Usecols)
	if len(usecols) == 0 {
		usecols = header
	}

	index := make([]int, len(usecols))
	for i, name := range usecols {
		index[i] = slices.Index(header, name)
		if index[i] < 0 {
			return nil, nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, path)
		}
	}

	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}

	r := arrowcsv.NewReader(body, arrow.NewSchema(fields, nil),
		arrowcsv.WithHeader(true),
		arrowcsv.WithComma(comma),
		arrowcsv.WithChunk(o.chunk),
		arrowcsv.WithAllocator(o.mem),
		arrowcsv.WithNullReader(true, o.nullValues...),
	)
	defer r.Release()

	values := make([][]any, len(usecols))
	rows := 0

	for r.Next() {
		rec := r.Record()

		n := int(rec.NumRows())
		if args.Nrows > 0 {
			n = min(n, args.Nrows-rows)
		}

		for j := range usecols {
			col, ok := rec.Column(index[j]).(*array.String)
			if !ok {
				return nil, nil, fmt.Errorf("unexpected %s column %q in %s", rec.Column(index[j]).DataType(), usecols[j], path)
			}

			for i := 0; i < n; i++ {
				if col.IsNull(i) {
					values[j] = append(values[j], nil)
					continue
				}

				values[j] = append(values[j], strings.Clone(col.Value(i)))
			}
		}

		rows += n

		if args.Nrows > 0 && rows >= args.Nrows {
			break
		}
	}

	if err := r.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cols := make([]*Column, len(usecols))

	for j, name := range usecols {
		t := declaredType(args, name)

		if row, err := coerce(values[j], t); err != nil {
			res.AddWarning("dtype_mismatch",
				fmt.Sprintf("%s: row %d: %v; column kept as %s", path, row+1, err, dtype.Text.Token()), "", name)

			t = dtype.Text
		}

		cols[j] = &Column{Name: name, Type: t, Values: values[j]}
		if cols[j].Values == nil {
			cols[j].Values = []any{}
		}
	}

	for _, w := range res.Warnings {
		o.logger.Warn(w.Message, "code", w.Code, "column", w.Field)
	}

	o.logger.Debug("read table", "path", path, "rows", rows, "columns", len(cols))

	frame, err := New(cols...)
	if err != nil {
		return nil, nil, err
	}

	return frame, res, nil
}

// ReadAll reads every file of a dataset and concatenates them in order.
// ncols, when given, is the expected column count per file.
func ReadAll(args []schema.ParserArgs, ncols func(i int) int, opts ...Option) (*Frame, *diagnostic.Diagnostics, error) {
	res := &diagnostic.Diagnostics{}
	frames := make([]*Frame, 0, len(args))

	for i, a := range args {
		fileOpts := opts
		if ncols != nil {
			fileOpts = append(slices.Clone(opts), WithNcols(ncols(i)))
		}

		f, d, err := Read(a, fileOpts...)
		if err != nil {
			return nil, nil, err
		}

		res.Merge(*d)
		frames = append(frames, f)
	}

	out, err := Concat(frames...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to concatenate files: %w", err)
	}

	return out, res, nil
}

func declaredType(args schema.ParserArgs, name string) dtype.DType {
	if slices.Contains(args.ParseDates, name) {
		return dtype.Date
	}

	if t, ok := args.Dtype[name]; ok {
		return t
	}

	return dtype.Text
}

type malformedLine struct {
	line   int
	reason string
}

// scan reads the header and every record of r. Records that do not parse or
// whose field count differs from the header are reported and left out of the
// returned body, which holds the header and the remaining records.
func scan(r io.Reader, comma rune) ([]string, *bytes.Buffer, []malformedLine, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil, errors.New("file is empty")
		}

		return nil, nil, nil, err
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	body := &bytes.Buffer{}
	w := csv.NewWriter(body)
	w.Comma = comma

	if err := w.Write(header); err != nil {
		return nil, nil, nil, err
	}

	var malformed []malformedLine

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			malformed = append(malformed, malformedLine{line: perr.StartLine, reason: perr.Err.Error()})
			continue
		}

		if err != nil {
			return nil, nil, nil, err
		}

		if len(record) != len(header) {
			line, _ := cr.FieldPos(0)
			malformed = append(malformed, malformedLine{
				line:   line,
				reason: fmt.Sprintf("%d fields, header has %d", len(record), len(header)),
			})

			continue
		}

		if err := w.Write(record); err != nil {
			return nil, nil, nil, err
		}
	}

	w.Flush()

	return header, body, malformed, w.Error()
}
