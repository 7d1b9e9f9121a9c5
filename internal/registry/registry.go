// Package registry holds the static mapping tables between logical types and
// native codes, host types, storage tags, numeric layouts and canonical text.
//
// Tables are built once on first use and are read-only afterwards.
package registry

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/electwix/coltype/internal/types"
)

var nativeCodes = map[types.Kind]reflect.Kind{
	types.KindInt8:     reflect.Int8,
	types.KindInt16:    reflect.Int16,
	types.KindInt32:    reflect.Int32,
	types.KindInt64:    reflect.Int64,
	types.KindUInt8:    reflect.Uint8,
	types.KindUInt16:   reflect.Uint16,
	types.KindUInt32:   reflect.Uint32,
	types.KindUInt64:   reflect.Uint64,
	types.KindFloat32:  reflect.Float32,
	types.KindFloat64:  reflect.Float64,
	types.KindDatetime: reflect.Int64,
	types.KindDuration: reflect.Int64,
	types.KindDate:     reflect.Int32,
	types.KindTime:     reflect.Int64,
}

// NativeCode returns the fixed-width scalar storage code of dt. Temporal
// types report the integer that stores their ticks.
func NativeCode(dt types.DataType) (reflect.Kind, error) {
	code, ok := nativeCodes[dt.Kind()]
	if !ok {
		return reflect.Invalid, &types.UnsupportedConversionError{DType: dt, Target: "native code"}
	}
	return code, nil
}

// Host type tags.
var (
	HostSequence = reflect.TypeFor[[]any]()
	HostMapping  = reflect.TypeFor[map[string]any]()
	HostNone     = reflect.TypeFor[types.None]()
	HostAny      = reflect.TypeFor[any]()
)

var hostTypes = map[types.Kind]reflect.Type{
	types.KindInt8:        reflect.TypeFor[int8](),
	types.KindInt16:       reflect.TypeFor[int16](),
	types.KindInt32:       reflect.TypeFor[int32](),
	types.KindInt64:       reflect.TypeFor[int64](),
	types.KindUInt8:       reflect.TypeFor[uint8](),
	types.KindUInt16:      reflect.TypeFor[uint16](),
	types.KindUInt32:      reflect.TypeFor[uint32](),
	types.KindUInt64:      reflect.TypeFor[uint64](),
	types.KindFloat32:     reflect.TypeFor[float32](),
	types.KindFloat64:     reflect.TypeFor[float64](),
	types.KindDecimal:     reflect.TypeFor[decimal.Decimal](),
	types.KindBoolean:     reflect.TypeFor[bool](),
	types.KindString:      reflect.TypeFor[string](),
	types.KindCategorical: reflect.TypeFor[string](),
	types.KindBinary:      reflect.TypeFor[[]byte](),
	types.KindDate:        reflect.TypeFor[civil.Date](),
	types.KindTime:        reflect.TypeFor[civil.Time](),
	types.KindDatetime:    reflect.TypeFor[time.Time](),
	types.KindDuration:    reflect.TypeFor[time.Duration](),
	types.KindList:        HostSequence,
	types.KindArray:       HostSequence,
	types.KindStruct:      HostMapping,
	types.KindNull:        HostNone,
}

// HostType returns the Go type that holds values of dt. Every type maps;
// Object and Unknown map to the empty interface.
func HostType(dt types.DataType) reflect.Type {
	if t, ok := hostTypes[dt.Kind()]; ok {
		return t
	}
	return HostAny
}

var ffiNames = map[types.Kind]string{
	types.KindInt8:        "i8",
	types.KindInt16:       "i16",
	types.KindInt32:       "i32",
	types.KindInt64:       "i64",
	types.KindUInt8:       "u8",
	types.KindUInt16:      "u16",
	types.KindUInt32:      "u32",
	types.KindUInt64:      "u64",
	types.KindFloat32:     "f32",
	types.KindFloat64:     "f64",
	types.KindBoolean:     "bool",
	types.KindString:      "str",
	types.KindBinary:      "binary",
	types.KindDate:        "date",
	types.KindTime:        "time",
	types.KindDatetime:    "datetime",
	types.KindDuration:    "duration",
	types.KindDecimal:     "decimal",
	types.KindList:        "list",
	types.KindStruct:      "struct",
	types.KindCategorical: "categorical",
	types.KindObject:      "object",
}

// FFIName returns the storage tag used when dispatching on dt.
func FFIName(dt types.DataType) (string, error) {
	name, ok := ffiNames[dt.Kind()]
	if !ok {
		return "", &types.UnsupportedConversionError{DType: dt, Target: "storage tag"}
	}
	return name, nil
}

type bitLayout struct {
	bits     int
	unsigned bool
}

var integerLayouts = map[bitLayout]types.DataType{
	{8, false}:  types.Int8,
	{16, false}: types.Int16,
	{32, false}: types.Int32,
	{64, false}: types.Int64,
	{8, true}:   types.UInt8,
	{16, true}:  types.UInt16,
	{32, true}:  types.UInt32,
	{64, true}:  types.UInt64,
}

// IntegerFromBits returns the fixed-width integer type of the given width.
func IntegerFromBits(bits int, unsigned bool) (types.DataType, bool) {
	dt, ok := integerLayouts[bitLayout{bits, unsigned}]
	return dt, ok
}

// FromNumericLayout is IntegerFromBits with a fallback for unmapped layouts.
func FromNumericLayout(bits int, unsigned bool, def types.DataType) types.DataType {
	if dt, ok := IntegerFromBits(bits, unsigned); ok {
		return dt
	}
	return def
}

var (
	textOnce    sync.Once
	textReverse map[string]types.DataType
)

// canonicalBase is the short name of each base variant.
var canonicalBase = map[types.Kind]string{
	types.KindInt8:        "i8",
	types.KindInt16:       "i16",
	types.KindInt32:       "i32",
	types.KindInt64:       "i64",
	types.KindUInt8:       "u8",
	types.KindUInt16:      "u16",
	types.KindUInt32:      "u32",
	types.KindUInt64:      "u64",
	types.KindFloat32:     "f32",
	types.KindFloat64:     "f64",
	types.KindDecimal:     "decimal",
	types.KindBoolean:     "bool",
	types.KindString:      "str",
	types.KindBinary:      "binary",
	types.KindDate:        "date",
	types.KindTime:        "time",
	types.KindDatetime:    "datetime",
	types.KindDuration:    "duration",
	types.KindList:        "list",
	types.KindArray:       "array",
	types.KindStruct:      "struct",
	types.KindCategorical: "cat",
	types.KindObject:      "object",
	types.KindNull:        "null",
	types.KindUnknown:     "unknown",
}

// CanonicalText renders the stable short form of dt, e.g. datetime[μs, UTC]
// or list[i64].
func CanonicalText(dt types.DataType) string {
	base := canonicalBase[dt.Kind()]
	switch dt.Kind() {
	case types.KindDecimal:
		p, hasP := dt.Precision()
		s, hasS := dt.Scale()
		if !hasP && !hasS {
			return base
		}
		return base + "[" + optText(p, hasP) + "," + optText(s, hasS) + "]"
	case types.KindDatetime:
		if dt.TimeUnit() == "" {
			return base
		}
		if zone := dt.TimeZone(); zone != "" {
			return base + "[" + dt.TimeUnit().Symbol() + ", " + zone + "]"
		}
		return base + "[" + dt.TimeUnit().Symbol() + "]"
	case types.KindDuration:
		if dt.TimeUnit() == "" {
			return base
		}
		return base + "[" + dt.TimeUnit().Symbol() + "]"
	case types.KindList:
		inner, ok := dt.Inner()
		if !ok {
			return base
		}
		return base + "[" + CanonicalText(inner) + "]"
	case types.KindArray:
		inner, ok := dt.Inner()
		if !ok {
			return base
		}
		return base + "[" + CanonicalText(inner) + ", " + strconv.Itoa(dt.Size()) + "]"
	case types.KindStruct:
		return base + "[" + strconv.Itoa(len(dt.Fields())) + "]"
	default:
		return base
	}
}

func optText(v uint8, ok bool) string {
	if !ok {
		return "*"
	}
	return strconv.Itoa(int(v))
}

func buildReverse() {
	textReverse = make(map[string]types.DataType)
	for _, k := range types.Kinds() {
		dt := types.Base(k)
		if !dt.IsRealizable(false) {
			continue
		}
		if name, ok := canonicalBase[k]; ok {
			textReverse[name] = dt
		}
		textReverse[k.String()] = dt
	}
}

// FromCanonicalText returns the base type whose canonical short name or
// long name is text. Unknown is never returned.
func FromCanonicalText(text string) (types.DataType, bool) {
	textOnce.Do(buildReverse)
	dt, ok := textReverse[strings.TrimSpace(text)]
	return dt, ok
}
