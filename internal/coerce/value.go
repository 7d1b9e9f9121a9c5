// Package coerce converts host values into the representation of a logical
// type and infers the common type of heterogeneous value sequences.
//
// Values use the Go vocabulary below. Other Go types are folded onto it
// before conversion: named basic types become their kind, pointers are
// dereferenced, driver.Valuer implementations are unwrapped and uuid.UUID
// becomes its string form.
//
//	Int8..UInt64       int8..uint64
//	Float32, Float64   float32, float64
//	Boolean            bool
//	String             string
//	Binary             []byte
//	Date               civil.Date
//	Time               civil.Time
//	Datetime           time.Time
//	Duration           time.Duration
//	Decimal            decimal.Decimal
//	List, Array        []any
//	Struct             map[string]any
//	Null               nil
//
// Strict coercion accepts only a value of the target's own family: integers
// may narrow or widen when the value fits, but never become floats or
// decimals. time.Time and time.Duration carry no unit, so strict Datetime and
// Duration targets of any unit accept them unless the conversion would
// truncate.
package coerce

import (
	"database/sql/driver"
	"reflect"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/electwix/coltype/internal/types"
)

// canonical folds v onto the value vocabulary.
func canonical(v any) any {
	switch x := v.(type) {
	case nil, bool, int8, int16, int32, int64, uint8, uint16, uint32, uint64,
		float32, float64, string, []byte, civil.Date, civil.Time, time.Time,
		time.Duration, decimal.Decimal, []any, map[string]any:
		return v
	case int:
		return int64(x)
	case uint:
		return uint64(x)
	case civil.DateTime:
		return x.In(time.UTC)
	case uuid.UUID:
		return x.String()
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return x.Decimal
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return v
		}
		return canonical(val)
	}
	return reflected(reflect.ValueOf(v), v)
}

func reflected(rv reflect.Value, v any) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return canonical(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int64:
		return rv.Int()
	case reflect.Int8:
		return int8(rv.Int())
	case reflect.Int16:
		return int16(rv.Int())
	case reflect.Int32:
		return int32(rv.Int())
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Uint8:
		return uint8(rv.Uint())
	case reflect.Uint16:
		return uint16(rv.Uint())
	case reflect.Uint32:
		return uint32(rv.Uint())
	case reflect.Float32:
		return float32(rv.Float())
	case reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.Kind() == reflect.Slice {
				return rv.Bytes()
			}
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = canonical(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = canonical(iter.Value().Interface())
		}
		return out
	}
	return v
}

// InferValueType returns the natural logical type of a single value. Lists
// take the common type of their elements, maps become structs with fields
// in key order, and values outside the vocabulary are Object.
func InferValueType(v any) types.DataType {
	switch x := canonical(v).(type) {
	case nil:
		return types.Null
	case bool:
		return types.Boolean
	case int8:
		return types.Int8
	case int16:
		return types.Int16
	case int32:
		return types.Int32
	case int64:
		return types.Int64
	case uint8:
		return types.UInt8
	case uint16:
		return types.UInt16
	case uint32:
		return types.UInt32
	case uint64:
		return types.UInt64
	case float32:
		return types.Float32
	case float64:
		return types.Float64
	case string:
		return types.String
	case []byte:
		return types.Binary
	case civil.Date:
		return types.Date
	case civil.Time:
		return types.Time
	case time.Time:
		return types.Datetime(types.Microseconds, "")
	case time.Duration:
		return types.Duration(types.Microseconds)
	case decimal.Decimal:
		return decimalType(x)
	case []any:
		inner, _ := CommonType(x, false)
		return types.List(inner)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]types.Field, len(keys))
		for i, k := range keys {
			fields[i] = types.NewField(k, InferValueType(x[k]))
		}
		return types.Struct(fields...)
	}
	return types.Object
}

// decimalType is an unbounded-precision decimal with the value's scale.
func decimalType(d decimal.Decimal) types.DataType {
	scale := uint8(0)
	if exp := d.Exponent(); exp < 0 {
		scale = uint8(min(-exp, maxScale))
	}
	return types.DecimalOpt(nil, &scale)
}

const maxScale = 38
