package storage

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"pbi-rag/internal/domain"
)

// EncodeParquet renders a record set as a snappy-compressed Parquet file.
// Columns whose values are all numbers or all booleans keep that type;
// everything else is written as strings.
func EncodeParquet(rs *domain.TabularRecordSet) ([]byte, error) {
	schema := parquetSchema(rs)
	record, err := recordFromSet(schema, rs)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(schema, &buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(record); err != nil {
		w.Close()
		return nil, fmt.Errorf("write parquet record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func parquetSchema(rs *domain.TabularRecordSet) *arrow.Schema {
	fields := make([]arrow.Field, len(rs.Columns))
	for i, column := range rs.Columns {
		fields[i] = arrow.Field{Name: column, Type: columnType(rs, column), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// columnType picks the Arrow type for one column by scanning its values.
// Nulls and absent cells do not influence the choice; an all-null column is
// written as strings.
func columnType(rs *domain.TabularRecordSet, column string) arrow.DataType {
	numbers, booleans, seen := true, true, false
	for _, row := range rs.Rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		seen = true
		if _, isNumber := v.(float64); !isNumber {
			numbers = false
		}
		if _, isBool := v.(bool); !isBool {
			booleans = false
		}
	}
	switch {
	case seen && numbers:
		return arrow.PrimitiveTypes.Float64
	case seen && booleans:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func recordFromSet(schema *arrow.Schema, rs *domain.TabularRecordSet) (arrow.Record, error) {
	builders := make([]array.Builder, len(rs.Columns))
	for i, field := range schema.Fields() {
		builders[i] = array.NewBuilder(memory.DefaultAllocator, field.Type)
	}

	for _, row := range rs.Rows {
		for i, column := range rs.Columns {
			v, ok := row[column]
			if !ok || v == nil {
				builders[i].AppendNull()
				continue
			}
			switch b := builders[i].(type) {
			case *array.Float64Builder:
				f, isNumber := v.(float64)
				if !isNumber {
					return nil, fmt.Errorf("column %q: expected number, got %T", column, v)
				}
				b.Append(f)
			case *array.BooleanBuilder:
				bv, isBool := v.(bool)
				if !isBool {
					return nil, fmt.Errorf("column %q: expected boolean, got %T", column, v)
				}
				b.Append(bv)
			case *array.StringBuilder:
				b.Append(domain.FormatValue(v))
			default:
				return nil, fmt.Errorf("column %q: unsupported builder %T", column, b)
			}
		}
	}

	cols := make([]arrow.Array, len(builders))
	for i := range builders {
		cols[i] = builders[i].NewArray()
		builders[i].Release()
	}

	record := array.NewRecord(schema, cols, int64(len(rs.Rows)))
	for i := range cols {
		cols[i].Release()
	}
	return record, nil
}
