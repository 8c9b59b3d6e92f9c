package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
)

// mapper resolves struct fields by their db tag, the same way sqlx does when
// scanning rows.
var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// Record is an ordered set of column values for one row write.
type Record struct {
	columns []string
	values  []any
}

// Set appends or replaces a column value.
func (r *Record) Set(column string, value any) {
	for i, c := range r.columns {
		if c == column {
			r.values[i] = value
			return
		}
	}
	r.columns = append(r.columns, column)
	r.values = append(r.values, value)
}

// Get returns the value stored for column.
func (r Record) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Columns returns the column names in write order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Values returns the column values in write order.
func (r Record) Values() []any {
	return append([]any(nil), r.values...)
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Map returns the record as a column to value map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// RecordOf extracts columns from v, a struct or pointer to struct with db
// tags. Nil pointers become SQL NULL. v is only read: rows need not be
// addressable and nil pointer fields stay nil.
func RecordOf(v any, columns []string) (Record, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return Record{}, fmt.Errorf("record of %T: not a struct", v)
	}
	tm := mapper.TypeMap(rv.Type())

	var rec Record
	for _, col := range columns {
		fi := tm.Names[col]
		if fi == nil {
			return Record{}, fmt.Errorf("record of %T: no field for column %q", v, col)
		}
		f, ok := fieldByIndex(rv, fi.Index)
		if !ok || (f.Kind() == reflect.Pointer && f.IsNil()) {
			rec.Set(col, nil)
			continue
		}
		rec.Set(col, f.Interface())
	}
	return rec, nil
}

// fieldByIndex walks index without allocating. It reports false when a nil
// embedded pointer sits on the path.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
