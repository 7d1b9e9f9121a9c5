// Package types defines the logical column types the engine reasons about
// and the errors shared by every inference path.
package types

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DataType is an immutable logical column type. The zero value is Unknown.
//
// Parametric variants (Decimal, Datetime, Duration, List, Array, Struct)
// may be unresolved while inference is in progress; refining a type always
// yields a new value.
type DataType struct {
	kind Kind

	precision    uint8
	hasPrecision bool
	scale        uint8
	hasScale     bool

	unit TimeUnit
	zone string

	inner  *DataType
	size   int
	fields []Field
}

// Field is a named member of a Struct type.
type Field struct {
	Name  string
	DType DataType
}

// NewField constructs a Field.
func NewField(name string, dtype DataType) Field {
	return Field{Name: name, DType: dtype}
}

// Non-parametric types.
var (
	Unknown     = DataType{kind: KindUnknown}
	Int8        = DataType{kind: KindInt8}
	Int16       = DataType{kind: KindInt16}
	Int32       = DataType{kind: KindInt32}
	Int64       = DataType{kind: KindInt64}
	UInt8       = DataType{kind: KindUInt8}
	UInt16      = DataType{kind: KindUInt16}
	UInt32      = DataType{kind: KindUInt32}
	UInt64      = DataType{kind: KindUInt64}
	Float32     = DataType{kind: KindFloat32}
	Float64     = DataType{kind: KindFloat64}
	Boolean     = DataType{kind: KindBoolean}
	String      = DataType{kind: KindString}
	Binary      = DataType{kind: KindBinary}
	Date        = DataType{kind: KindDate}
	Time        = DataType{kind: KindTime}
	Categorical = DataType{kind: KindCategorical}
	Object      = DataType{kind: KindObject}
	Null        = DataType{kind: KindNull}
)

// Base returns the unparameterized type of the given kind.
func Base(k Kind) DataType {
	return DataType{kind: k}
}

// Decimal returns a Decimal with explicit precision and scale.
func Decimal(precision, scale uint8) DataType {
	return DataType{kind: KindDecimal, precision: precision, hasPrecision: true, scale: scale, hasScale: true}
}

// DecimalOpt returns a Decimal whose precision and scale may be absent.
func DecimalOpt(precision, scale *uint8) DataType {
	dt := DataType{kind: KindDecimal}
	if precision != nil {
		dt.precision, dt.hasPrecision = *precision, true
	}
	if scale != nil {
		dt.scale, dt.hasScale = *scale, true
	}
	return dt
}

// Datetime returns a Datetime with the given unit. An empty zone means the
// type is time zone naive.
func Datetime(unit TimeUnit, zone string) DataType {
	return DataType{kind: KindDatetime, unit: unit, zone: zone}
}

// Duration returns a Duration with the given unit.
func Duration(unit TimeUnit) DataType {
	return DataType{kind: KindDuration, unit: unit}
}

// List returns a variable-length list of inner.
func List(inner DataType) DataType {
	return DataType{kind: KindList, inner: &inner}
}

// Array returns a fixed-size array of inner.
func Array(inner DataType, size int) DataType {
	return DataType{kind: KindArray, inner: &inner, size: size}
}

// Struct returns a struct with the given ordered fields.
func Struct(fields ...Field) DataType {
	return DataType{kind: KindStruct, fields: append([]Field(nil), fields...)}
}

// Kind reports the variant of the type.
func (d DataType) Kind() Kind { return d.kind }

// Precision returns the decimal precision when present.
func (d DataType) Precision() (uint8, bool) { return d.precision, d.hasPrecision }

// Scale returns the decimal scale when present.
func (d DataType) Scale() (uint8, bool) { return d.scale, d.hasScale }

// TimeUnit returns the unit of a Datetime or Duration.
func (d DataType) TimeUnit() TimeUnit { return d.unit }

// TimeZone returns the zone of a Datetime, empty when naive.
func (d DataType) TimeZone() string { return d.zone }

// Inner returns the element type of a List or Array.
func (d DataType) Inner() (DataType, bool) {
	if d.inner == nil {
		return Unknown, false
	}
	return *d.inner, true
}

// Size returns the length of an Array.
func (d DataType) Size() int { return d.size }

// Fields returns a copy of the struct fields.
func (d DataType) Fields() []Field {
	return append([]Field(nil), d.fields...)
}

// WithTimeUnit returns a copy of a Datetime or Duration with a new unit.
func (d DataType) WithTimeUnit(unit TimeUnit) DataType {
	d.unit = unit
	return d
}

// WithTimeZone returns a copy of a Datetime with a new zone.
func (d DataType) WithTimeZone(zone string) DataType {
	d.zone = zone
	return d
}

// BaseType strips every parameter from the type.
func (d DataType) BaseType() DataType {
	return Base(d.kind)
}

// Equal reports value equality: parametric types compare parameters,
// compound types compare recursively.
func (d DataType) Equal(o DataType) bool {
	if d.kind != o.kind {
		return false
	}
	if !d.kind.IsParametric() {
		return true
	}
	switch d.kind {
	case KindDecimal:
		return d.hasPrecision == o.hasPrecision && d.precision == o.precision &&
			d.hasScale == o.hasScale && d.scale == o.scale
	case KindDatetime:
		return d.unit == o.unit && d.zone == o.zone
	case KindDuration:
		return d.unit == o.unit
	case KindList, KindArray:
		if d.size != o.size {
			return false
		}
		if d.inner == nil || o.inner == nil {
			return d.inner == nil && o.inner == nil
		}
		return d.inner.Equal(*o.inner)
	case KindStruct:
		if len(d.fields) != len(o.fields) {
			return false
		}
		for i := range d.fields {
			if d.fields[i].Name != o.fields[i].Name || !d.fields[i].DType.Equal(o.fields[i].DType) {
				return false
			}
		}
		return true
	}
	return false
}

// Key returns a comparable encoding of the type; equal types share a key.
func (d DataType) Key() string {
	var b strings.Builder
	d.writeKey(&b)
	return b.String()
}

func (d DataType) writeKey(b *strings.Builder) {
	b.WriteString(strconv.Itoa(int(d.kind)))
	switch d.kind {
	case KindDecimal:
		b.WriteByte('(')
		if d.hasPrecision {
			b.WriteString(strconv.Itoa(int(d.precision)))
		}
		b.WriteByte(',')
		if d.hasScale {
			b.WriteString(strconv.Itoa(int(d.scale)))
		}
		b.WriteByte(')')
	case KindDatetime:
		fmt.Fprintf(b, "(%s,%d:%s)", d.unit, len(d.zone), d.zone)
	case KindDuration:
		fmt.Fprintf(b, "(%s)", d.unit)
	case KindList, KindArray:
		b.WriteByte('(')
		if d.inner != nil {
			d.inner.writeKey(b)
		}
		fmt.Fprintf(b, ",%d)", d.size)
	case KindStruct:
		b.WriteByte('(')
		for _, f := range d.fields {
			fmt.Fprintf(b, "%d:%s=", len(f.Name), f.Name)
			f.DType.writeKey(b)
			b.WriteByte(';')
		}
		b.WriteByte(')')
	}
}

// String renders the long form, e.g. Datetime(time_unit='us', time_zone=None).
func (d DataType) String() string {
	name := d.kind.String()
	switch d.kind {
	case KindDecimal:
		if !d.hasPrecision && !d.hasScale {
			return name
		}
		return fmt.Sprintf("%s(precision=%s, scale=%s)", name, optU8(d.precision, d.hasPrecision), optU8(d.scale, d.hasScale))
	case KindDatetime:
		if d.unit == "" {
			return name
		}
		zone := "None"
		if d.zone != "" {
			zone = "'" + d.zone + "'"
		}
		return fmt.Sprintf("%s(time_unit='%s', time_zone=%s)", name, d.unit, zone)
	case KindDuration:
		if d.unit == "" {
			return name
		}
		return fmt.Sprintf("%s(time_unit='%s')", name, d.unit)
	case KindList:
		if d.inner == nil {
			return name
		}
		return fmt.Sprintf("%s(%s)", name, d.inner)
	case KindArray:
		if d.inner == nil {
			return name
		}
		return fmt.Sprintf("%s(%s, shape=%d)", name, d.inner, d.size)
	case KindStruct:
		parts := make([]string, len(d.fields))
		for i, f := range d.fields {
			parts[i] = fmt.Sprintf("'%s': %s", f.Name, f.DType)
		}
		return fmt.Sprintf("%s({%s})", name, strings.Join(parts, ", "))
	default:
		return name
	}
}

func optU8(v uint8, ok bool) string {
	if !ok {
		return "None"
	}
	return strconv.Itoa(int(v))
}

// IsInteger reports whether the type is a fixed-width integer.
func (d DataType) IsInteger() bool {
	return d.IsSignedInteger() || d.IsUnsignedInteger()
}

// IsSignedInteger reports whether the type is Int8 through Int64.
func (d DataType) IsSignedInteger() bool {
	return d.kind >= KindInt8 && d.kind <= KindInt64
}

// IsUnsignedInteger reports whether the type is UInt8 through UInt64.
func (d DataType) IsUnsignedInteger() bool {
	return d.kind >= KindUInt8 && d.kind <= KindUInt64
}

// IsFloat reports whether the type is Float32 or Float64.
func (d DataType) IsFloat() bool {
	return d.kind == KindFloat32 || d.kind == KindFloat64
}

// IsDecimal reports whether the type is a Decimal.
func (d DataType) IsDecimal() bool { return d.kind == KindDecimal }

// IsNumeric reports whether the type is an integer, float or decimal.
func (d DataType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat() || d.IsDecimal()
}

// IsTemporal reports whether the type is Date, Time, Datetime or Duration.
func (d DataType) IsTemporal() bool {
	switch d.kind {
	case KindDate, KindTime, KindDatetime, KindDuration:
		return true
	default:
		return false
	}
}

// IsNested reports whether the type is a List, Array or Struct.
func (d DataType) IsNested() bool {
	switch d.kind {
	case KindList, KindArray, KindStruct:
		return true
	default:
		return false
	}
}

// IsRealizable reports whether the type is a member of the closed set of
// materializable types. Unknown only counts when includeUnknown is set.
func (d DataType) IsRealizable(includeUnknown bool) bool {
	if d.kind == KindUnknown {
		return includeUnknown
	}
	return d.kind > KindUnknown && d.kind <= KindNull
}

// IsResolved reports whether every parameter needed for storage is present.
// Decimal needs at least a scale; precision defaults at materialization.
func (d DataType) IsResolved() bool {
	switch d.kind {
	case KindUnknown:
		return false
	case KindDecimal:
		return d.hasScale
	case KindDatetime, KindDuration:
		return d.unit != ""
	case KindList, KindArray:
		return d.inner != nil && d.inner.IsResolved()
	case KindStruct:
		for _, f := range d.fields {
			if !f.DType.IsResolved() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Unpack flattens nested types into their distinct constituent types in
// first-seen order. With includeCompound the nested types are kept too.
func (d DataType) Unpack(includeCompound bool) []DataType {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []DataType
	var walk func(DataType)
	walk = func(t DataType) {
		if t.IsNested() {
			if includeCompound && seen.Add(t.Key()) {
				out = append(out, t)
			}
			if t.inner != nil {
				walk(*t.inner)
			}
			for _, f := range t.fields {
				walk(f.DType)
			}
			return
		}
		if seen.Add(t.Key()) {
			out = append(out, t)
		}
	}
	walk(d)
	return out
}

// UnpackAll flattens several types at once, deduplicating across them.
func UnpackAll(includeCompound bool, dtypes ...DataType) []DataType {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []DataType
	for _, dt := range dtypes {
		for _, t := range dt.Unpack(includeCompound) {
			if seen.Add(t.Key()) {
				out = append(out, t)
			}
		}
	}
	return out
}
