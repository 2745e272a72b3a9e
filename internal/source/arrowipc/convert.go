// Package arrowipc reads Apache Arrow data as tables. It registers two
// kinds: "arrow" for Arrow IPC streams (local files or http(s) URLs) and
// "parquet" for local Parquet files.
//
// The header is the schema's field names. Each record batch contributes one
// data row per slot; null slots read as the null value.
package arrowipc

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"tablestat/internal/parse"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Cell converts slot i of arr.
func Cell(arr arrow.Array, i int) value.Value {
	if arr.IsNull(i) {
		return value.Null()
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return value.Bool(a.Value(i))
	case *array.Int8:
		return value.Int(int64(a.Value(i)))
	case *array.Int16:
		return value.Int(int64(a.Value(i)))
	case *array.Int32:
		return value.Int(int64(a.Value(i)))
	case *array.Int64:
		return value.Int(a.Value(i))
	case *array.Uint8:
		return value.Int(int64(a.Value(i)))
	case *array.Uint16:
		return value.Int(int64(a.Value(i)))
	case *array.Uint32:
		return value.Int(int64(a.Value(i)))
	case *array.Uint64:
		return value.Of(a.Value(i))
	case *array.Float16:
		return value.Float(float64(a.Value(i).Float32()))
	case *array.Float32:
		return value.Float(float64(a.Value(i)))
	case *array.Float64:
		return value.Float(a.Value(i))
	case *array.String:
		return value.Text(a.Value(i))
	case *array.LargeString:
		return value.Text(a.Value(i))
	case *array.Binary:
		return value.Bytes(append([]byte(nil), a.Value(i)...))
	case *array.LargeBinary:
		return value.Bytes(append([]byte(nil), a.Value(i)...))
	case *array.Date32:
		return value.Time(a.Value(i).ToTime())
	case *array.Date64:
		return value.Time(a.Value(i).ToTime())
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return value.Time(a.Value(i).ToTime(unit))
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		v, _ := parse.Number(false)(value.Text(a.Value(i).ToString(scale)))
		return v
	case *array.Dictionary:
		return Cell(a.Dictionary(), a.GetValueIndex(i))
	}
	return value.Text(arr.ValueStr(i))
}

// Header returns the field names of schema.
func Header(schema *arrow.Schema) table.Row {
	fs := schema.Fields()
	row := make(table.Row, len(fs))
	for i, f := range fs {
		row[i] = value.Text(f.Name)
	}
	return row
}

// Rows yields the rows of rec until yield returns false, and reports
// whether it ran to completion.
func Rows(rec arrow.Record, yield func(table.Row) bool) bool {
	cols := rec.Columns()
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = Cell(c, i)
		}
		if !yield(row) {
			return false
		}
	}
	return true
}
