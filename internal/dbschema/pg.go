package dbschema

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgNames rewrites PostgreSQL catalog names the type-name rules do not
// know under their catalog spelling.
var pgNames = map[string]string{
	"bpchar": "char",
	"name":   "varchar",
	"citext": "text",
	"xml":    "text",
}

// FromFieldDescriptions converts pgx field descriptions into descriptors.
// Type names come from the OIDs registered in m; a nil m uses the pgx
// defaults. Unknown OIDs leave the column unresolved.
func FromFieldDescriptions(fds []pgconn.FieldDescription, m *pgtype.Map) []Column {
	if m == nil {
		m = pgtype.NewMap()
	}
	cols := make([]Column, len(fds))
	for n, fd := range fds {
		c := Column{Name: fd.Name}
		if fd.DataTypeSize > 0 {
			c.InternalSize = Known(int64(fd.DataTypeSize))
		}
		if t, ok := m.TypeForOID(fd.DataTypeOID); ok {
			c.TypeCode = pgTypeName(t.Name, fd.DataTypeOID, fd.TypeModifier, &c)
		}
		cols[n] = c
	}
	return cols
}

// pgTypeName spells a catalog type name the way the type-name rules read
// it, folding the type modifier into precision, scale or a time precision.
func pgTypeName(name string, oid uint32, typmod int32, c *Column) string {
	array := false
	if rest, ok := strings.CutPrefix(name, "_"); ok {
		array = true
		name = rest
	}
	if alias, ok := pgNames[name]; ok {
		name = alias
	}

	switch oid {
	case pgtype.NumericOID, pgtype.NumericArrayOID:
		if typmod >= 4 {
			mod := typmod - 4
			c.Precision = Known(int64((mod >> 16) & 0xffff))
			c.Scale = Known(int64(mod & 0xffff))
		}
	case pgtype.TimestampOID, pgtype.TimestampArrayOID, pgtype.TimeOID, pgtype.TimeArrayOID:
		if typmod >= 0 {
			name += "(" + strconv.Itoa(int(typmod)) + ")"
		}
	case pgtype.VarcharOID, pgtype.VarcharArrayOID, pgtype.BPCharOID, pgtype.BPCharArrayOID:
		if typmod >= 4 {
			c.DisplaySize = Known(int64(typmod - 4))
		}
	}
	if array {
		name += "[]"
	}
	return name
}
