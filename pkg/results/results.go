// Package results turns an engine result into rows with typed column
// metadata.
package results

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/tiersql/pkg/core"
)

// header is shared by every row of one result.
type header struct {
	columns []core.TableColumn
	byName  map[string]int
}

// TableRow is one row of a query result.
type TableRow struct {
	h      *header
	values []any
}

// IsEmpty reports whether the row has no columns.
func (r TableRow) IsEmpty() bool { return len(r.values) == 0 }

// ColumnCount returns the number of columns.
func (r TableRow) ColumnCount() int { return len(r.values) }

// Columns returns the column metadata in ordinal order.
func (r TableRow) Columns() []core.TableColumn {
	if r.h == nil {
		return nil
	}
	return r.h.columns
}

// Column looks up a column by name.
func (r TableRow) Column(name string) (core.TableColumn, bool) {
	if r.h == nil {
		return core.TableColumn{}, false
	}
	i, ok := r.h.byName[name]
	if !ok {
		return core.TableColumn{}, false
	}
	return r.h.columns[i], true
}

// ColumnAt looks up a column by ordinal.
func (r TableRow) ColumnAt(ordinal int) (core.TableColumn, bool) {
	if r.h == nil || ordinal < 0 || ordinal >= len(r.h.columns) {
		return core.TableColumn{}, false
	}
	return r.h.columns[ordinal], true
}

// Value returns the value of the named column.
func (r TableRow) Value(name string) (any, bool) {
	col, ok := r.Column(name)
	if !ok {
		return nil, false
	}
	return r.values[col.Ordinal], true
}

// ValueAt returns the value at ordinal.
func (r TableRow) ValueAt(ordinal int) (any, bool) {
	if ordinal < 0 || ordinal >= len(r.values) {
		return nil, false
	}
	return r.values[ordinal], true
}

// Values returns the row values in ordinal order.
func (r TableRow) Values() []any { return r.values }

// Collect drains res into rows and closes it.
func Collect(res core.Result) (rows []TableRow, err error) {
	defer func() { err = errors.Join(err, res.Close()) }()

	names, err := res.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	h := &header{
		columns: make([]core.TableColumn, len(names)),
		byName:  make(map[string]int, len(names)),
	}
	types := columnTypes(res, len(names))
	for i, name := range names {
		h.columns[i] = core.TableColumn{Ordinal: i, Name: name, Type: core.DataTypeFromNative(types[i])}
		if _, dup := h.byName[name]; !dup {
			h.byName[name] = i
		}
	}

	for res.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := res.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(rows), err)
		}
		for i, v := range values {
			// Drivers may reuse byte buffers between rows.
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		rows = append(rows, TableRow{h: h, values: values})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rows, nil
}

// columnTypes returns the native type name of each column, or "" when the
// result cannot describe its columns.
func columnTypes(res core.Result, n int) []string {
	out := make([]string, n)
	switch r := res.(type) {
	case core.ColumnTyper:
		if names, err := r.ColumnTypeNames(); err == nil {
			copy(out, names)
		}
	case interface {
		ColumnTypes() ([]*sql.ColumnType, error)
	}:
		if cts, err := r.ColumnTypes(); err == nil {
			for i, ct := range cts {
				if i < n {
					out[i] = ct.DatabaseTypeName()
				}
			}
		}
	}
	return out
}
