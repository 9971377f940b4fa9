package table

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"tabspec/internal/dtype"
)

// ArrowType returns the arrow type a column of t is exported as.
func ArrowType(t dtype.DType) arrow.DataType {
	switch t {
	case dtype.Integer:
		return arrow.PrimitiveTypes.Int64
	case dtype.Float:
		return arrow.PrimitiveTypes.Float64
	case dtype.Date:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the arrow schema of the frame.
func (f *Frame) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(f.Columns))
	for i, c := range f.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: ArrowType(c.Type), Nullable: true}
	}

	return arrow.NewSchema(fields, nil)
}

// ToRecord converts the frame to an arrow record. The caller releases it.
func (f *Frame) ToRecord(mem memory.Allocator) (arrow.Record, error) {
	b := array.NewRecordBuilder(mem, f.Schema())
	defer b.Release()

	for i, c := range f.Columns {
		if err := appendColumn(b.Field(i), c); err != nil {
			return nil, err
		}
	}

	return b.NewRecord(), nil
}

func appendColumn(fb array.Builder, c *Column) error {
	for row, v := range c.Values {
		if v == nil {
			fb.AppendNull()
			continue
		}

		ok := true

		switch b := fb.(type) {
		case *array.Int64Builder:
			var n int64
			if n, ok = v.(int64); ok {
				b.Append(n)
			}
		case *array.Float64Builder:
			var x float64
			if x, ok = v.(float64); ok {
				b.Append(x)
			}
		case *array.TimestampBuilder:
			var tm time.Time
			if tm, ok = v.(time.Time); ok {
				b.Append(arrow.Timestamp(tm.UnixMilli()))
			}
		case *array.StringBuilder:
			b.Append(FormatValue(v))
		default:
			return fmt.Errorf("column %q: unsupported builder %T", c.Name, fb)
		}

		if !ok {
			return fmt.Errorf("column %q row %d: %T value in %s column", c.Name, row, v, c.Type)
		}
	}

	return nil
}

// FromTable converts an arrow table with int64, float64, string or timestamp
// columns to a Frame.
func FromTable(tbl arrow.Table) (*Frame, error) {
	sch := tbl.Schema()
	cols := make([]*Column, 0, sch.NumFields())

	for i, field := range sch.Fields() {
		c := &Column{Name: field.Name, Values: make([]any, 0, tbl.NumRows())}

		switch field.Type.ID() {
		case arrow.INT64:
			c.Type = dtype.Integer
		case arrow.FLOAT64:
			c.Type = dtype.Float
		case arrow.TIMESTAMP:
			c.Type = dtype.Date
		case arrow.STRING:
			c.Type = dtype.Text
		default:
			return nil, fmt.Errorf("column %q: unsupported arrow type %s", field.Name, field.Type)
		}

		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for row := 0; row < chunk.Len(); row++ {
				if chunk.IsNull(row) {
					c.Values = append(c.Values, nil)
					continue
				}

				c.Values = append(c.Values, arrowValue(chunk, row))
			}
		}

		cols = append(cols, c)
	}

	return New(cols...)
}

func arrowValue(arr arrow.Array, row int) any {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(row)
	case *array.Float64:
		return a.Value(row)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(row).ToTime(unit)
	case *array.String:
		return a.Value(row)
	default:
		return nil
	}
}

// WriteParquet writes the frame to a snappy-compressed parquet file at path,
// storing the arrow schema alongside the data.
func WriteParquet(f *Frame, path string) error {
	mem := memory.NewGoAllocator()

	rec, err := f.ToRecord(mem)
	if err != nil {
		return fmt.Errorf("failed to build arrow record: %w", err)
	}
	defer rec.Release()

	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer out.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), out, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return nil
}

// ReadParquet reads a parquet file written by WriteParquet back into a Frame.
func ReadParquet(path string) (*Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer in.Close()

	pf, err := file.NewParquetReader(in, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	return FromTable(tbl)
}
