package native

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/electwix/coltype/internal/types"
)

type goTypeKey struct {
	t reflect.Type
}

func (k goTypeKey) String() string {
	return fmt.Sprintf("%s@%p", k.t, k.t)
}

var (
	timeType          = reflect.TypeFor[time.Time]()
	durationType      = reflect.TypeFor[time.Duration]()
	civilDateType     = reflect.TypeFor[civil.Date]()
	civilTimeType     = reflect.TypeFor[civil.Time]()
	civilDateTimeType = reflect.TypeFor[civil.DateTime]()
	decimalType       = reflect.TypeFor[decimal.Decimal]()
	uuidType          = reflect.TypeFor[uuid.UUID]()
)

// knownGoTypes maps concrete library types before their kinds are inspected.
var knownGoTypes = map[reflect.Type]types.DataType{
	timeType:          types.Datetime(types.Microseconds, ""),
	durationType:      types.Duration(types.Microseconds),
	civilDateType:     types.Date,
	civilTimeType:     types.Time,
	civilDateTimeType: types.Datetime(types.Microseconds, ""),
	decimalType:       types.Base(types.KindDecimal),
	uuidType:          types.String,

	reflect.TypeFor[sql.NullString]():      types.String,
	reflect.TypeFor[sql.NullInt64]():       types.Int64,
	reflect.TypeFor[sql.NullInt32]():       types.Int32,
	reflect.TypeFor[sql.NullInt16]():       types.Int16,
	reflect.TypeFor[sql.NullByte]():        types.UInt8,
	reflect.TypeFor[sql.NullFloat64]():     types.Float64,
	reflect.TypeFor[sql.NullBool]():        types.Boolean,
	reflect.TypeFor[sql.NullTime]():        types.Datetime(types.Microseconds, ""),
	reflect.TypeFor[uuid.NullUUID]():       types.String,
	reflect.TypeFor[decimal.NullDecimal](): types.Base(types.KindDecimal),
}

// subtypeTargets are checked in order for named struct types sharing the
// layout of a temporal type.
var subtypeTargets = []struct {
	t  reflect.Type
	dt types.DataType
}{
	{timeType, types.Datetime(types.Microseconds, "")},
	{civilDateTimeType, types.Datetime(types.Microseconds, "")},
	{civilDateType, types.Date},
	{civilTimeType, types.Time},
}

// FromGoType returns the logical type of a Go type. Pointers are
// dereferenced, slices become lists and structs become structs named by
// their col or json tags. A nil type is Null.
func (i *Inferrer) FromGoType(t reflect.Type) (types.DataType, error) {
	if t == nil {
		return types.Null, nil
	}
	return i.goTypes.Do(goTypeKey{t}, func() (types.DataType, error) {
		return inferGoType(t, make(map[reflect.Type]bool))
	})
}

// FromGoType infers t with a shared default Inferrer.
func FromGoType(t reflect.Type) (types.DataType, error) {
	return defaultInferrer.FromGoType(t)
}

// FromValue infers the type of v's dynamic Go type.
func FromValue(v any) (types.DataType, error) {
	return defaultInferrer.FromGoType(reflect.TypeOf(v))
}

func inferGoType(t reflect.Type, visiting map[reflect.Type]bool) (types.DataType, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if dt, ok := knownGoTypes[t]; ok {
		return dt, nil
	}
	if inner, ok := sqlNullValue(t); ok {
		return inferGoType(inner, visiting)
	}

	switch t.Kind() {
	case reflect.Bool:
		return types.Boolean, nil
	case reflect.Int, reflect.Int64:
		return types.Int64, nil
	case reflect.Int8:
		return types.Int8, nil
	case reflect.Int16:
		return types.Int16, nil
	case reflect.Int32:
		return types.Int32, nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return types.UInt64, nil
	case reflect.Uint8:
		return types.UInt8, nil
	case reflect.Uint16:
		return types.UInt16, nil
	case reflect.Uint32:
		return types.UInt32, nil
	case reflect.Float32:
		return types.Float32, nil
	case reflect.Float64:
		return types.Float64, nil
	case reflect.String:
		return types.String, nil
	case reflect.Interface, reflect.Map:
		return types.Object, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return types.Binary, nil
		}
		inner, err := inferGoType(t.Elem(), visiting)
		if err != nil {
			return types.Unknown, err
		}
		return types.List(inner), nil
	case reflect.Array:
		inner, err := inferGoType(t.Elem(), visiting)
		if err != nil {
			return types.Unknown, err
		}
		return types.Array(inner, t.Len()), nil
	case reflect.Struct:
		return inferStruct(t, visiting)
	}
	return types.Unknown, &types.UnrecognizedTypeError{Spec: t.String()}
}

func inferStruct(t reflect.Type, visiting map[reflect.Type]bool) (types.DataType, error) {
	for _, target := range subtypeTargets {
		if t.ConvertibleTo(target.t) {
			return target.dt, nil
		}
	}
	if visiting[t] {
		return types.Unknown, &types.UnrecognizedTypeError{Spec: t.String(), Err: fmt.Errorf("recursive type")}
	}
	visiting[t] = true
	defer delete(visiting, t)

	var fields []types.Field
	for n := range t.NumField() {
		f := t.Field(n)
		if !f.IsExported() {
			continue
		}
		name, skip := fieldName(f)
		if skip {
			continue
		}
		dt, err := inferGoType(f.Type, visiting)
		if err != nil {
			return types.Unknown, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields = append(fields, types.NewField(name, dt))
	}
	return types.Struct(fields...), nil
}

// fieldName prefers the col tag, then the json tag, then the Go name.
func fieldName(f reflect.StructField) (string, bool) {
	for _, key := range []string{"col", "json"} {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return f.Name, false
}

// sqlNullValue unwraps the generic sql.Null[T].
func sqlNullValue(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || t.PkgPath() != "database/sql" || !strings.HasPrefix(t.Name(), "Null[") {
		return nil, false
	}
	f, ok := t.FieldByName("V")
	if !ok {
		return nil, false
	}
	return f.Type, true
}
