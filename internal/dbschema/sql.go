package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/electwix/coltype/internal/types"
)

// ColumnType is the column metadata exposed by *sql.ColumnType.
type ColumnType interface {
	Name() string
	DatabaseTypeName() string
	Length() (int64, bool)
	DecimalSize() (int64, int64, bool)
	Nullable() (bool, bool)
	ScanType() reflect.Type
}

var _ ColumnType = (*sql.ColumnType)(nil)

// FromColumnTypes converts database/sql column metadata into descriptors.
// The driver type name is preferred; drivers that report none fall back
// to the scan type.
func FromColumnTypes[C ColumnType](cts []C) []Column {
	cols := make([]Column, len(cts))
	for n, ct := range cts {
		c := Column{Name: ct.Name()}
		if name := ct.DatabaseTypeName(); name != "" {
			c.TypeCode = name
		} else if st := ct.ScanType(); st != nil {
			c.TypeCode = st
		}
		if length, ok := ct.Length(); ok {
			c.InternalSize = Known(length)
		}
		if p, s, ok := ct.DecimalSize(); ok {
			c.Precision, c.Scale = Known(p), Known(s)
		}
		if nullable, ok := ct.Nullable(); ok {
			c.Nullable = sql.Null[bool]{V: nullable, Valid: true}
		}
		cols[n] = c
	}
	return cols
}

// FromRows reads the column descriptors of an open result set.
func FromRows(rows *sql.Rows) ([]Column, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	return FromColumnTypes(cts), nil
}

// Querier runs a query; *sql.DB, *sql.Conn and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Describe runs query and resolves the schema of its result set. Column
// resolution failures are returned alongside the partial schema.
func (i *Inferrer) Describe(ctx context.Context, db Querier, query string, args ...any) (types.Schema, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.Schema{}, fmt.Errorf("describe query: %w", err)
	}
	defer rows.Close()

	cols, err := FromRows(rows)
	if err != nil {
		return types.Schema{}, err
	}
	return i.Infer(cols)
}
