package types

import (
	"strings"
)

// Column pairs a column name with its logical type.
type Column struct {
	Name  string
	DType DataType
}

// Schema is an ordered set of named columns.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema. A repeated name replaces the earlier type but
// keeps its position.
func NewSchema(columns ...Column) Schema {
	s := Schema{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		s = s.With(c.Name, c.DType)
	}
	return s
}

// With returns a schema with name set to dtype.
func (s Schema) With(name string, dtype DataType) Schema {
	out := Schema{
		columns: append([]Column(nil), s.columns...),
		index:   make(map[string]int, len(s.columns)+1),
	}
	for k, v := range s.index {
		out.index[k] = v
	}
	if i, ok := out.index[name]; ok {
		out.columns[i].DType = dtype
		return out
	}
	out.index[name] = len(out.columns)
	out.columns = append(out.columns, Column{Name: name, DType: dtype})
	return out
}

// Get returns the type of the named column.
func (s Schema) Get(name string) (DataType, bool) {
	i, ok := s.index[name]
	if !ok {
		return Unknown, false
	}
	return s.columns[i].DType, true
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.columns) }

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns a copy of the columns in order.
func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Equal reports whether both schemas hold the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i].Name != o.columns[i].Name || !s.columns[i].DType.Equal(o.columns[i].DType) {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(c.DType.String())
	}
	b.WriteByte('}')
	return b.String()
}

// None is the host tag for the Null type.
type None struct{}
