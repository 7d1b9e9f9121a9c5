// Package arrowconv maps logical types onto Apache Arrow data types and back.
//
// The mapping favours the 64-bit offset layouts (large string, large binary,
// large list). Reading accepts the 32-bit and view layouts as well, so a
// round trip through Arrow is stable but not byte-for-byte symmetric.
package arrowconv

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/electwix/coltype/internal/native"
	"github.com/electwix/coltype/internal/types"
)

const target = "arrow"

// DefaultDecimalPrecision is used for decimals without a declared precision.
const DefaultDecimalPrecision = 38

var fixed = map[types.Kind]arrow.DataType{
	types.KindInt8:    arrow.PrimitiveTypes.Int8,
	types.KindInt16:   arrow.PrimitiveTypes.Int16,
	types.KindInt32:   arrow.PrimitiveTypes.Int32,
	types.KindInt64:   arrow.PrimitiveTypes.Int64,
	types.KindUInt8:   arrow.PrimitiveTypes.Uint8,
	types.KindUInt16:  arrow.PrimitiveTypes.Uint16,
	types.KindUInt32:  arrow.PrimitiveTypes.Uint32,
	types.KindUInt64:  arrow.PrimitiveTypes.Uint64,
	types.KindFloat32: arrow.PrimitiveTypes.Float32,
	types.KindFloat64: arrow.PrimitiveTypes.Float64,
	types.KindBoolean: arrow.FixedWidthTypes.Boolean,
	types.KindString:  arrow.BinaryTypes.LargeString,
	types.KindBinary:  arrow.BinaryTypes.LargeBinary,
	types.KindDate:    arrow.PrimitiveTypes.Date32,
	types.KindTime:    arrow.FixedWidthTypes.Time64ns,
	types.KindNull:    arrow.Null,
}

// ToArrow returns the Arrow type for dt. Categorical, Object and Unknown
// have no Arrow form and fail with an UnsupportedConversionError.
func ToArrow(dt types.DataType) (arrow.DataType, error) {
	if at, ok := fixed[dt.Kind()]; ok {
		return at, nil
	}
	switch dt.Kind() {
	case types.KindDecimal:
		p, ok := dt.Precision()
		precision := int32(DefaultDecimalPrecision)
		if ok {
			precision = int32(p)
		}
		s, _ := dt.Scale()
		return &arrow.Decimal128Type{Precision: precision, Scale: int32(s)}, nil
	case types.KindDatetime:
		return &arrow.TimestampType{Unit: unitToArrow(dt.TimeUnit()), TimeZone: dt.TimeZone()}, nil
	case types.KindDuration:
		return &arrow.DurationType{Unit: unitToArrow(dt.TimeUnit())}, nil
	case types.KindList:
		inner, _ := dt.Inner()
		elem, err := ToArrow(inner)
		if err != nil {
			return nil, err
		}
		return arrow.LargeListOf(elem), nil
	case types.KindArray:
		inner, _ := dt.Inner()
		elem, err := ToArrow(inner)
		if err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOf(int32(dt.Size()), elem), nil
	case types.KindStruct:
		fields := make([]arrow.Field, 0, len(dt.Fields()))
		for _, f := range dt.Fields() {
			ft, err := ToArrow(f.DType)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields = append(fields, arrow.Field{Name: f.Name, Type: ft, Nullable: true})
		}
		return arrow.StructOf(fields...), nil
	}
	return nil, &types.UnsupportedConversionError{DType: dt, Target: target}
}

// FromArrow returns the logical type for an Arrow type. Dictionary encoded
// columns read as Categorical regardless of their value type.
func FromArrow(at arrow.DataType) (types.DataType, error) {
	if at == nil {
		return types.Null, nil
	}
	switch t := at.(type) {
	case *arrow.DictionaryType:
		return types.Categorical, nil
	case *arrow.Decimal128Type:
		return types.Decimal(uint8(t.Precision), uint8(t.Scale)), nil
	case *arrow.Decimal256Type:
		if t.Precision > DefaultDecimalPrecision {
			return types.Unknown, unsupportedArrow(at)
		}
		return types.Decimal(uint8(t.Precision), uint8(t.Scale)), nil
	case *arrow.TimestampType:
		return types.Datetime(unitFromArrow(t.Unit), t.TimeZone), nil
	case *arrow.DurationType:
		return types.Duration(unitFromArrow(t.Unit)), nil
	case *arrow.ListType:
		return listFromArrow(t.Elem())
	case *arrow.LargeListType:
		return listFromArrow(t.Elem())
	case *arrow.ListViewType:
		return listFromArrow(t.Elem())
	case *arrow.LargeListViewType:
		return listFromArrow(t.Elem())
	case *arrow.FixedSizeListType:
		inner, err := FromArrow(t.Elem())
		if err != nil {
			return types.Unknown, err
		}
		return types.Array(inner, int(t.Len())), nil
	case *arrow.StructType:
		fields := make([]types.Field, 0, t.NumFields())
		for _, f := range t.Fields() {
			ft, err := FromArrow(f.Type)
			if err != nil {
				return types.Unknown, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields = append(fields, types.NewField(f.Name, ft))
		}
		return types.Struct(fields...), nil
	}

	switch at.ID() {
	case arrow.NULL:
		return types.Null, nil
	case arrow.BOOL:
		return types.Boolean, nil
	case arrow.INT8:
		return types.Int8, nil
	case arrow.INT16:
		return types.Int16, nil
	case arrow.INT32:
		return types.Int32, nil
	case arrow.INT64:
		return types.Int64, nil
	case arrow.UINT8:
		return types.UInt8, nil
	case arrow.UINT16:
		return types.UInt16, nil
	case arrow.UINT32:
		return types.UInt32, nil
	case arrow.UINT64:
		return types.UInt64, nil
	case arrow.FLOAT16, arrow.FLOAT32:
		return types.Float32, nil
	case arrow.FLOAT64:
		return types.Float64, nil
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return types.String, nil
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW, arrow.FIXED_SIZE_BINARY:
		return types.Binary, nil
	case arrow.DATE32, arrow.DATE64:
		return types.Date, nil
	case arrow.TIME32, arrow.TIME64:
		return types.Time, nil
	}
	return types.Unknown, unsupportedArrow(at)
}

func listFromArrow(elem arrow.DataType) (types.DataType, error) {
	inner, err := FromArrow(elem)
	if err != nil {
		return types.Unknown, err
	}
	return types.List(inner), nil
}

// ErrUnsupportedArrowType marks an Arrow type with no logical counterpart.
var ErrUnsupportedArrowType = errors.New("unsupported arrow type")

func unsupportedArrow(at arrow.DataType) error {
	return &types.UnrecognizedTypeError{Spec: at.String(), Err: ErrUnsupportedArrowType}
}

// SchemaToArrow converts every column of s. All columns are nullable.
func SchemaToArrow(s types.Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, s.Len())
	for _, c := range s.Columns() {
		at, err := ToArrow(c.DType)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields = append(fields, arrow.Field{Name: c.Name, Type: at, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

// SchemaFromArrow converts an Arrow schema, keeping field order.
func SchemaFromArrow(s *arrow.Schema) (types.Schema, error) {
	if s == nil {
		return types.NewSchema(), nil
	}
	cols := make([]types.Column, 0, s.NumFields())
	for _, f := range s.Fields() {
		dt, err := FromArrow(f.Type)
		if err != nil {
			return types.Schema{}, fmt.Errorf("column %q: %w", f.Name, err)
		}
		cols = append(cols, types.Column{Name: f.Name, DType: dt})
	}
	return types.NewSchema(cols...), nil
}

// FromHost returns the Arrow type a column of host values of kind h is
// stored as.
func FromHost(h native.HostType) (arrow.DataType, error) {
	dt, err := native.FromTypeSpec(native.Primitive(h))
	if err != nil {
		return nil, err
	}
	return ToArrow(dt)
}

func unitToArrow(u types.TimeUnit) arrow.TimeUnit {
	switch u {
	case types.Milliseconds:
		return arrow.Millisecond
	case types.Nanoseconds:
		return arrow.Nanosecond
	default:
		return arrow.Microsecond
	}
}

// unitFromArrow widens seconds to milliseconds, the coarsest logical unit.
func unitFromArrow(u arrow.TimeUnit) types.TimeUnit {
	switch u {
	case arrow.Second, arrow.Millisecond:
		return types.Milliseconds
	case arrow.Nanosecond:
		return types.Nanoseconds
	default:
		return types.Microseconds
	}
}
